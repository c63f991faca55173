package config

import "sync"

var (
	watchMu        sync.Mutex
	folderWatchers []func(dir string)
)

// OnAutoSaveFolderChange registers f to be called when the auto save folder
// is changed in the config file of a running process.
func OnAutoSaveFolderChange(f func(dir string)) {
	watchMu.Lock()
	defer watchMu.Unlock()
	folderWatchers = append(folderWatchers, f)
}

// UpdateAutoSaveFolder stores dir and notifies the registered watchers.
// It reports false if dir equals the current value.
func UpdateAutoSaveFolder(dir string) bool {
	watchMu.Lock()
	if dir == AutoSaveFolder {
		watchMu.Unlock()
		return false
	}
	AutoSaveFolder = dir
	watchers := append([]func(string){}, folderWatchers...)
	watchMu.Unlock()

	for _, f := range watchers {
		f(dir)
	}
	return true
}
