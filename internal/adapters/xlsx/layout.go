// Package xlsx reads curriculum datasets from workbooks and writes report
// workbooks, using github.com/xuri/excelize/v2.
package xlsx

// Dataset sheet names.
const (
	SheetSSBB   = "SSBB"
	SheetCE     = "CE"
	SheetCEv    = "CEv"
	SheetDO     = "DO"
	SheetSBJoin = "SSBB-CE-CEv"
	SheetCEDO   = "CE-DO"
)

// Dataset column headers.
const (
	ColSSBBCode = "Saber Básico"
	ColSSBBDesc = "Descripción Completa"
	ColCECode   = "CE"
	ColCEDesc   = "Descripción del CE"
	ColCEvCode  = "Número"
	ColDesc     = "Descripción"
	ColDOCode   = "Descriptor"
	ColSB       = "SB"
	ColCE       = "CE"
	ColCEv      = "CEv"
	ColDOList   = "DOs asociados"
)

// registrySheet describes one code/description sheet.
type registrySheet struct {
	name    string
	codeCol string
	descCol string
}

var registrySheets = [4]registrySheet{
	{SheetSSBB, ColSSBBCode, ColSSBBDesc},
	{SheetCE, ColCECode, ColCEDesc},
	{SheetCEv, ColCEvCode, ColDesc},
	{SheetDO, ColDOCode, ColDesc},
}
