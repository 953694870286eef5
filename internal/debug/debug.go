// Package debug writes component-tagged diagnostics to a log file, never to stdout.
//
// Output is off unless the binary was built with EnableDebug=true or SAUCO_DEBUG is set.
// SAUCO_DEBUG accepts "1", "true" or "all" for every component, or a comma-separated
// list of component names ("scan,watch") to narrow the log.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EnvVar enables debug output at runtime
const EnvVar = "SAUCO_DEBUG"

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/sauco/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set while serving MCP; stdout belongs to the protocol then
var MCPMode = false

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer
	debugFile   *os.File
)

// SetMCPMode suppresses all debug output while enabled
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput replaces the debug writer. nil disables output.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile opens a timestamped log under the temp directory and makes it the
// debug writer. It returns the log path; CloseDebugLog releases the file.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "sauco-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	name := fmt.Sprintf("sauco-%s-%d.log", time.Now().Format("20060102-150405"), os.Getpid())
	logPath := filepath.Join(logDir, name)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the log file opened by InitDebugLogFile, if any
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	debugFile = nil
	debugOutput = nil
	return err
}

// IsDebugEnabled reports whether any debug output is wanted. MCP mode always wins.
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvVar))) {
	case "", "0", "false":
		return false
	}
	return true
}

// componentEnabled applies the SAUCO_DEBUG component filter
func componentEnabled(component string) bool {
	value := strings.TrimSpace(os.Getenv(EnvVar))
	switch strings.ToLower(value) {
	case "", "1", "true", "all":
		return true
	}
	for _, name := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(name), component) {
			return true
		}
	}
	return false
}

func writer() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

func stamp() string {
	return time.Now().Format("15:04:05.000")
}

// Printf writes an untagged debug line
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if w := writer(); w != nil {
		fmt.Fprintf(w, "%s [DEBUG] "+format, append([]interface{}{stamp()}, args...)...)
	}
}

// Log writes a debug line tagged with its component
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() || !componentEnabled(component) {
		return
	}
	if w := writer(); w != nil {
		fmt.Fprintf(w, "%s [DEBUG:%s] "+format, append([]interface{}{stamp(), component}, args...)...)
	}
}

// LogParse logs parser adapter events (grammar selection, parse failures)
func LogParse(format string, args ...interface{}) {
	Log("PARSE", format, args...)
}

// LogAnalysis logs metrics engine events (fallback taken, recovered panics)
func LogAnalysis(format string, args ...interface{}) {
	Log("ANALYSIS", format, args...)
}

// LogScan logs batch scan progress
func LogScan(format string, args ...interface{}) {
	Log("SCAN", format, args...)
}

// LogWatch logs file watcher events
func LogWatch(format string, args ...interface{}) {
	Log("WATCH", format, args...)
}

// LogMCP logs MCP server events
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal records msg in the debug log and returns it as an error; the caller decides
// whether to exit. Nothing is written in MCP mode.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		if w := writer(); w != nil {
			fmt.Fprintf(w, "%s [FATAL] %s", stamp(), msg)
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}
