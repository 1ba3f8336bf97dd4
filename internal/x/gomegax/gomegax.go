package gomegax

import (
	"fmt"
	"os"
	"strings"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

// HaveFileContents succeeds when the file at the path contains exactly the
// expected content, ignoring surrounding whitespace.
func HaveFileContents(expected string) types.GomegaMatcher {
	return &haveFileContents{expected: expected}
}

type haveFileContents struct {
	expected string
	actual   string
}

func (t *haveFileContents) Match(actual interface{}) (success bool, err error) {
	path, ok := actual.(string)
	if !ok {
		return false, fmt.Errorf("HaveFileContents matcher expects a path")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	t.actual = strings.TrimSpace(string(raw))

	return t.actual == strings.TrimSpace(t.expected), nil
}

func (t *haveFileContents) FailureMessage(actual interface{}) (message string) {
	return format.Message(actual, fmt.Sprintf("to contain %q, found %q", t.expected, t.actual))
}

func (t *haveFileContents) NegatedFailureMessage(actual interface{}) (message string) {
	return format.Message(actual, fmt.Sprintf("not to contain %q", t.expected))
}

// HaveFilePermissions ...
func HaveFilePermissions(m os.FileMode) types.GomegaMatcher {
	return &haveFilePermissions{expected: m}
}

type haveFilePermissions struct {
	expected   os.FileMode
	actualMode os.FileMode
}

func (t *haveFilePermissions) Match(actual interface{}) (success bool, err error) {
	actualFilename, ok := actual.(string)
	if !ok {
		return false, fmt.Errorf("HaveFilePermissions matcher expects a path")
	}

	fileInfo, err := os.Stat(actualFilename)
	if err != nil {
		return false, err
	}
	t.actualMode = fileInfo.Mode().Perm()

	return fileInfo.Mode().Perm() == t.expected, nil
}

func (t *haveFilePermissions) FailureMessage(actual interface{}) (message string) {
	return format.Message(actual, fmt.Sprintf("%s to equal %s", t.expected, t.actualMode))
}

func (t *haveFilePermissions) NegatedFailureMessage(actual interface{}) (message string) {
	return format.Message(actual, fmt.Sprintf("%s not to equal %s", t.expected, t.actualMode))
}
