package goroutine

import (
	"log"
	"runtime/debug"

	"github.com/ignatzorin/tutoring-backend/internal/logger"
)

// SafeGo запускает горутину с обработкой panic.
func SafeGo(fn func()) {
	go func() {
		defer recoverPanic()
		fn()
	}()
}

func recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	if logger.Log != nil {
		logger.Log.Errorf("panic в горутине: %v\n%s", r, debug.Stack())
		return
	}
	log.Printf("panic в горутине: %v\n%s", r, debug.Stack())
}
