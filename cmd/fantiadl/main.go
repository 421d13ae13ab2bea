package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"fantiadl/pkg/logger"
	"fantiadl/pkg/ui"
)

func main() {
	os.Exit(run())
}

// run executes the root command and turns failures, including panics,
// into exit code 1
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().ErrorWithFields("unexpected failure", map[string]interface{}{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			})
			ui.PrintError("Unexpected failure", r)
			code = 1
		}
		_ = logger.Close()
	}()

	if err := Execute(); err != nil {
		ui.PrintError("Error", err)
		return 1
	}
	return 0
}
