package main

import (
	"testing"

	"github.com/urfave/cli/v3"
)

func TestRatingUsageMatchesRecordBounds(t *testing.T) {
	var usage string
	for _, sub := range newCommand().Commands {
		if sub.Name != "new" {
			continue
		}
		for _, f := range sub.Flags {
			if ff, ok := f.(*cli.FloatFlag); ok && ff.Name == "rating" {
				usage = ff.Usage
			}
		}
	}
	if usage != "0 to 5 in half steps" {
		t.Errorf("rating usage = %q", usage)
	}
}
