package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	errOutputAlreadyAdded = errors.New("output already added")
	errOutputNotFound     = errors.New("output not found")
)

// outputWriter fans each log line out to every configured output. A failing
// output does not stop the line reaching the others
type outputWriter struct {
	mtx     sync.RWMutex
	names   []string
	writers []io.Writer
}

// newOutputWriter builds the writer for a pipe separated output list such as
// "stdout|file"
func newOutputWriter(outputs string) (*outputWriter, error) {
	o := &outputWriter{}
	for _, name := range strings.Split(outputs, "|") {
		name = strings.ToLower(strings.TrimSpace(name))
		var w io.Writer
		switch name {
		case "stdout", "console":
			w = os.Stdout
		case "stderr":
			w = os.Stderr
		case "file":
			if !fileLoggingConfiguredCorrectly || globalLogFile == nil {
				return nil, errFileLoggingNotSetup
			}
			w = globalLogFile
		default:
			return nil, fmt.Errorf("%w: %q", errUnhandledOutputWriter, name)
		}
		if err := o.add(name, w); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *outputWriter) add(name string, w io.Writer) error {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	for i := range o.names {
		if o.names[i] == name || o.writers[i] == w {
			return fmt.Errorf("%w: %q", errOutputAlreadyAdded, name)
		}
	}
	o.names = append(o.names, name)
	o.writers = append(o.writers, w)
	return nil
}

func (o *outputWriter) remove(name string) error {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	for i := range o.names {
		if o.names[i] != name {
			continue
		}
		o.names = append(o.names[:i], o.names[i+1:]...)
		o.writers = append(o.writers[:i], o.writers[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %q", errOutputNotFound, name)
}

// Write writes p to every output and joins the errors of the ones that failed
func (o *outputWriter) Write(p []byte) (int, error) {
	o.mtx.RLock()
	defer o.mtx.RUnlock()
	var errs error
	for i := range o.writers {
		n, err := o.writers[i].Write(p)
		if err == nil && n != len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", o.names[i], err))
		}
	}
	if errs != nil {
		return 0, errs
	}
	return len(p), nil
}

func (o *outputWriter) String() string {
	o.mtx.RLock()
	defer o.mtx.RUnlock()
	return strings.Join(o.names, "|")
}
