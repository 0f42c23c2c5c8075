//go:build !js || !wasm

package debug

import "log"

// Log logs a message through the standard logger
func Log(args ...interface{}) {
	log.Println(args...)
}

// Logf logs a formatted message through the standard logger
func Logf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// Warnf logs a formatted warning through the standard logger
func Warnf(format string, args ...interface{}) {
	log.Printf("⚠️  "+format, args...)
}
