package main

// Importing each analyzer package purely for its init() side effect,
// which registers it with internal/registry. The orchestrator never
// references these packages directly; it only talks to the registry.
import (
	_ "github.com/oxhq/codeframe/internal/cobol"
	_ "github.com/oxhq/codeframe/internal/lang/csharp"
	_ "github.com/oxhq/codeframe/internal/lang/java"
	_ "github.com/oxhq/codeframe/internal/lang/javascript"
	_ "github.com/oxhq/codeframe/internal/lang/markdown"
	_ "github.com/oxhq/codeframe/internal/lang/php"
	_ "github.com/oxhq/codeframe/internal/lang/python"
	_ "github.com/oxhq/codeframe/internal/lang/ruby"
	_ "github.com/oxhq/codeframe/internal/lang/rust"
	_ "github.com/oxhq/codeframe/internal/lang/typescript"
	_ "github.com/oxhq/codeframe/internal/sqlanalysis"
)
