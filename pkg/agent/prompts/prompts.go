// Package prompts holds the system prompts used by the routing, gating
// and synthesis stages. They are kept as standalone markdown files so the
// French copy can be reviewed without touching Go code.
package prompts

import _ "embed"

//go:embed fast_router.md
var FastRouter string

//go:embed rag_gate.md
var RAGGate string

//go:embed pipeline_router.md
var PipelineRouter string

//go:embed synthesizer_system.md
var SynthesizerSystem string
