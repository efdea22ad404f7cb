package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Credentials holds a portal username and password read from a file.
type Credentials struct {
	Username string
	Password string
}

// LoadCredentialsFile reads USERNAME= and PASSWORD= lines from path.
// Lines starting with # are ignored and whitespace around = is allowed.
// A missing file, an empty path, or an incomplete file yields (nil, nil)
// so callers fall back to prompting.
func LoadCredentialsFile(path string) (*Credentials, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open credentials file: %w", err)
	}
	defer f.Close()

	creds := &Credentials{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "USERNAME":
			creds.Username = value
		case "PASSWORD":
			creds.Password = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	if creds.Username == "" || creds.Password == "" {
		return nil, nil
	}
	return creds, nil
}
