package config

import (
	"fmt"
	"log"
	"strings"
)

// Required collects missing variables so a misconfigured process reports
// all of them in one message.
type Required struct {
	missing []string
}

func (r *Required) NonEmpty(value, envName string) *Required {
	if value == "" {
		r.missing = append(r.missing, envName)
	}
	return r
}

func (r *Required) NonEmptyBytes(value []byte, envName string) *Required {
	if len(value) == 0 {
		r.missing = append(r.missing, envName)
	}
	return r
}

func (r *Required) NonEmptyList(value []string, envName string) *Required {
	if len(value) == 0 {
		r.missing = append(r.missing, envName)
	}
	return r
}

func (r *Required) Err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required env %s", strings.Join(r.missing, ", "))
}

// MustBeSet exits the process when any variable is missing.
func (r *Required) MustBeSet() {
	if err := r.Err(); err != nil {
		log.Fatal(err)
	}
}
