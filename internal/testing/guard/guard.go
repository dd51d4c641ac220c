// Package guard switches the process into test mode when imported, so
// command tests never read a developer's .env file.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("INVOICING_TEST_MODE") == "" {
			_ = os.Setenv("INVOICING_TEST_MODE", "1")
		}
	})
}
