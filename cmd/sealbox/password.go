package main

import (
	"fmt"
	"os"
	"strings"
)

// resolve returns the password from exactly one of the flag, an
// environment variable or a file.
func (p *passwordFlags) resolve() (string, error) {
	count := 0
	if p.value != "" {
		count++
	}
	if p.env != "" {
		count++
	}
	if p.file != "" {
		count++
	}
	if count > 1 {
		return "", fmt.Errorf("specify at most one of --%s, --%s-env, --%s-file", p.name, p.name, p.name)
	}
	if count == 0 {
		return "", fmt.Errorf("--%s, --%s-env or --%s-file is required", p.name, p.name, p.name)
	}

	if p.env != "" {
		v := os.Getenv(p.env)
		if v == "" {
			return "", fmt.Errorf("environment variable %q is empty or not set", p.env)
		}
		return v, nil
	}

	if p.file != "" {
		data, err := os.ReadFile(p.file)
		if err != nil {
			return "", fmt.Errorf("read %s file: %w", p.name, err)
		}
		v := strings.TrimRight(string(data), "\r\n")
		if v == "" {
			return "", fmt.Errorf("%s file is empty", p.name)
		}
		return v, nil
	}

	return p.value, nil
}

// provided reports whether any source was given
func (p *passwordFlags) provided() bool {
	return p.value != "" || p.env != "" || p.file != ""
}
