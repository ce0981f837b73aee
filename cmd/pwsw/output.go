package main

import (
	"encoding/json"
	"fmt"
)

// printJSON marshals v with indentation for --json output modes.
func printJSON(v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}
