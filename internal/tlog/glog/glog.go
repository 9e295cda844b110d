// Package glog plugs glog in as the tlog backend for callers who want
// leveled, file-based logging instead of the plain stdlib default.
package glog

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/obi1kenobi/trustfall-go/internal/tlog"
)

func init() {
	tlog.SetLogger(Logger{})
}

// Logger adapts glog to the tlog.Logger interface.
type Logger struct{}

func (Logger) Infof(format string, args ...interface{}) {
	glog.InfoDepth(3, fmt.Sprintf(format, args...))
}
func (Logger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(3, fmt.Sprintf(format, args...))
}
func (Logger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(3, fmt.Sprintf(format, args...))
}
func (Logger) Fatalf(format string, args ...interface{}) {
	glog.FatalDepth(3, fmt.Sprintf(format, args...))
}
