// Package envx provides utility functions for extracting information from environment variables
package envx

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/subosito/gotenv"
)

// Boolean retrieve a boolean flag from the environment, checks each key in order
// first to parse successfully is returned.
func Boolean(fallback bool, keys ...string) bool {
	for _, k := range keys {
		if b, err := strconv.ParseBool(os.Getenv(k)); err == nil {
			return b
		}
	}

	return fallback
}

// String retrieve a string value from the environment, checks each key in order
// first string found is returned.
func String(fallback string, keys ...string) string {
	for _, k := range keys {
		s := strings.TrimSpace(os.Getenv(k))
		if s != "" {
			return s
		}
	}

	return fallback
}

// RequiredInt retrieves an integer from the environment, checks each key in order.
// the first non-blank value must parse, and at least one key must be set.
func RequiredInt(keys ...string) (i int, err error) {
	for _, k := range keys {
		s := strings.TrimSpace(os.Getenv(k))
		if s == "" {
			continue
		}

		if i, err = strconv.Atoi(s); err != nil {
			return i, errors.Wrapf(err, "unable to parse integer from %s=%s", k, s)
		}

		return i, nil
	}

	return 0, errors.Errorf("environment variable not set: %s", strings.Join(keys, ", "))
}

// LoadFile applies the variables defined in a dotenv file to the process environment.
// variables already present in the environment take precedence.
func LoadFile(path string) (err error) {
	var (
		src *os.File
	)

	if src, err = os.Open(path); err != nil {
		return errors.Wrapf(err, "unable to open environment file: %s", path)
	}
	defer src.Close()

	for k, v := range gotenv.Parse(src) {
		if _, found := os.LookupEnv(k); found {
			continue
		}

		if err = os.Setenv(k, v); err != nil {
			return errors.Wrapf(err, "unable to set %s", k)
		}
	}

	return nil
}
