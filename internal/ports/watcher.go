package ports

// Watcher monitors dataset files for changes and triggers index rebuilds.
// The adapter watches the parent directory of each file (editors replace
// files rather than writing in place) and reports only the watched paths.
type Watcher interface {
	// Watch starts monitoring the given files. onChange is called with the
	// absolute path of a changed file, at most once per debounce window. The
	// callback may be invoked from any goroutine. Returns an error if a
	// directory doesn't exist or permissions are insufficient.
	Watch(paths []string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
