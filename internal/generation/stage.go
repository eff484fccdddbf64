package generation

// Stage names a step of a generation request.
type Stage string

const (
	StageValidating    Stage = "validating"
	StageTierResolving Stage = "tier-resolving"
	StageCacheChecking Stage = "cache-checking"
	StageQuotaChecking Stage = "quota-checking"
	StagePrompting     Stage = "prompting"
	StageModelInvoking Stage = "model-invoking"
	StageParsing       Stage = "parsing"
	StageCaching       Stage = "caching"
	StageLogging       Stage = "logging"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)
