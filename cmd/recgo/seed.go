package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vmunix/recgo/internal/metadata"
)

// parseIdentity parses an explicit "movie:603" / "tv:1396" reference.
func parseIdentity(s string) (metadata.Identity, bool) {
	kind, rest, found := strings.Cut(s, ":")
	if !found {
		return metadata.Identity{}, false
	}
	t, err := metadata.ParseMediaType(kind)
	if err != nil {
		return metadata.Identity{}, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return metadata.Identity{}, false
	}
	return metadata.Identity{Type: t, ID: id}, true
}

// resolveSeed turns a CLI argument into an identity: explicit references
// pass through, anything else is treated as a title query.
func resolveSeed(ctx context.Context, a *app, arg string) (metadata.Identity, error) {
	if id, ok := parseIdentity(arg); ok {
		return id, nil
	}

	matches, err := a.meta.Resolve(ctx, arg)
	if err != nil {
		return metadata.Identity{}, err
	}
	for _, m := range matches {
		if m.Confidence >= metadata.ConfidenceLow {
			if m.Confidence < metadata.ConfidenceHigh {
				// Keep stdout clean for --json consumers
				fmt.Fprintf(os.Stderr, "resolved %q to %s (%d) [%s confidence]\n", arg, m.Title, m.Year, m.Confidence)
			}
			return m.Identity, nil
		}
	}
	return metadata.Identity{}, fmt.Errorf("no confident match for %q, try 'recgo resolve %q'", arg, arg)
}
