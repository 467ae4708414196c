package report

import (
	"github.com/corey/curricula/internal/domain/curriculum"
)

// ExpansionRow is one table-2 row: an anchor code and the codes of the other
// three classes related to it. The anchor class's own column is always empty.
type ExpansionRow struct {
	Code string   `json:"code"`
	SSBB []string `json:"ssbb,omitempty"`
	CE   []string `json:"ce,omitempty"`
	CEv  []string `json:"cev,omitempty"`
	DO   []string `json:"do,omitempty"`
}

// Column returns the related codes of class c.
func (r ExpansionRow) Column(c curriculum.Class) []string {
	switch c {
	case curriculum.SSBB:
		return r.SSBB
	case curriculum.CE:
		return r.CE
	case curriculum.CEv:
		return r.CEv
	case curriculum.DO:
		return r.DO
	}
	return nil
}

// Expansions holds the four anchored sub-reports of table 2.
type Expansions struct {
	SSBB []ExpansionRow `json:"ssbb"`
	CE   []ExpansionRow `json:"ce"`
	CEv  []ExpansionRow `json:"cev"`
	DO   []ExpansionRow `json:"do"`
}

// Anchored returns the sub-report anchored at class c.
func (e Expansions) Anchored(c curriculum.Class) []ExpansionRow {
	switch c {
	case curriculum.SSBB:
		return e.SSBB
	case curriculum.CE:
		return e.CE
	case curriculum.CEv:
		return e.CEv
	case curriculum.DO:
		return e.DO
	}
	return nil
}

// BuildRelationExpansions builds the four anchored sub-reports. Each one is
// independent; rows are ordered by the natural order of the anchor code.
func BuildRelationExpansions(selection []string, idx *curriculum.Index) Expansions {
	byClass := partition(selection, idx)
	return Expansions{
		SSBB: expandSSBB(selection, byClass, idx),
		CE:   expandCE(byClass, idx),
		CEv:  expandCEv(byClass, idx),
		DO:   expandDO(byClass, idx),
	}
}

// expandSSBB anchors at SSBB codes that are selected or joined to a selected
// code. Selected DOs widen the anchors through their CEs.
func expandSSBB(selection []string, byClass [4][]string, idx *curriculum.Index) []ExpansionRow {
	anchors := codeSet{}
	anchors.add(byClass[curriculum.SSBB]...)
	for _, code := range selection {
		anchors.add(idx.SBsOf(code)...)
	}
	for _, do := range byClass[curriculum.DO] {
		for _, ce := range idx.CEsOf(do) {
			anchors.add(idx.SBsOf(ce)...)
		}
	}

	rows := make([]ExpansionRow, 0, len(anchors))
	for _, sb := range anchors.list() {
		ces := idx.RelatedOf(sb, curriculum.CE)
		dos := codeSet{}
		for _, ce := range ces {
			dos.add(idx.DOsOf(ce)...)
		}
		rows = append(rows, ExpansionRow{
			Code: sb,
			CE:   ces,
			CEv:  idx.RelatedOf(sb, curriculum.CEv),
			DO:   dos.list(),
		})
	}
	return rows
}

// expandCE anchors at CE codes joined to selected SSBB codes, plus selected CEs.
func expandCE(byClass [4][]string, idx *curriculum.Index) []ExpansionRow {
	anchors := codeSet{}
	anchors.add(byClass[curriculum.CE]...)
	for _, sb := range byClass[curriculum.SSBB] {
		anchors.add(idx.RelatedOf(sb, curriculum.CE)...)
	}

	rows := make([]ExpansionRow, 0, len(anchors))
	for _, ce := range anchors.list() {
		rows = append(rows, ExpansionRow{
			Code: ce,
			SSBB: idx.SBsOf(ce),
			CEv:  idx.CEvsUnder(ce),
			DO:   idx.DOsOf(ce),
		})
	}
	return rows
}

// expandCEv anchors at CEv codes joined to selected SSBB codes, plus selected CEvs.
func expandCEv(byClass [4][]string, idx *curriculum.Index) []ExpansionRow {
	anchors := codeSet{}
	anchors.add(byClass[curriculum.CEv]...)
	for _, sb := range byClass[curriculum.SSBB] {
		anchors.add(idx.RelatedOf(sb, curriculum.CEv)...)
	}

	rows := make([]ExpansionRow, 0, len(anchors))
	for _, cev := range anchors.list() {
		row := ExpansionRow{Code: cev, SSBB: idx.SBsOf(cev)}
		if parent, ok := idx.ParentCE(cev); ok {
			row.CE = []string{parent}
			row.DO = idx.DOsOf(parent)
		}
		rows = append(rows, row)
	}
	return rows
}

// expandDO anchors at selected DOs plus DOs reached from the CEs joined to
// selected SSBB codes.
func expandDO(byClass [4][]string, idx *curriculum.Index) []ExpansionRow {
	anchors := codeSet{}
	anchors.add(byClass[curriculum.DO]...)
	for _, sb := range byClass[curriculum.SSBB] {
		for _, ce := range idx.RelatedOf(sb, curriculum.CE) {
			anchors.add(idx.DOsOf(ce)...)
		}
	}

	rows := make([]ExpansionRow, 0, len(anchors))
	for _, do := range anchors.list() {
		ces := idx.CEsOf(do)
		sbs, cevs := codeSet{}, codeSet{}
		for _, ce := range ces {
			sbs.add(idx.SBsOf(ce)...)
			cevs.add(idx.CEvsUnder(ce)...)
		}
		rows = append(rows, ExpansionRow{
			Code: do,
			SSBB: sbs.list(),
			CE:   ces,
			CEv:  cevs.list(),
		})
	}
	return rows
}
