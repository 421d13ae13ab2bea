package ui

// TUI is an interface for terminal user interfaces following a crawl
type TUI interface {
	// SetStage reports the page, post or image the crawl is working on
	SetStage(stage string, i, total int, target string)
	CompleteImage(path string, size int64)
	LogInfo(format string, args ...interface{})
	LogSuccess(format string, args ...interface{})
	LogWarning(format string, args ...interface{})
	LogError(format string, args ...interface{})
}
