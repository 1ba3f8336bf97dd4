package logx

import (
	"fmt"
	"log"
)

// Cause logs the error, including the stack trace when verbose is enabled.
func Cause(verbose bool, err error) error {
	if err == nil {
		return nil
	}

	if verbose {
		log.Output(2, fmt.Sprintf("%+v\n", err))
		return err
	}

	log.Output(2, fmt.Sprintln(err))
	return err
}
