package main

import "github.com/schollz/scoreforge/internal/keytheory"

func keytheoryKey(root int, minor bool) keytheory.KeySignature {
	return keytheory.KeySignature{Root: mod12(root), IsMajor: !minor}
}
