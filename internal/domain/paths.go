package domain

// Interchange files between the two stages. Whole-file UTF-8 text, no schema.
const (
	DefaultOutputDir      = "app_output"
	DefaultTranscriptPath = "app_output/transcribed_output.txt"
	DefaultReplyPath      = "app_output/ai_response.txt"
	DefaultTempInputPath  = "app_output/temp_input.txt"
)

// SteeringSuffix is appended to every prompt. It is a hint to the model,
// the reply is not checked against it.
const SteeringSuffix = "keep it short and don't respond to keeping it short. no longer than one short sentence. dont add any special characters to the prompt. no dashes in your reply. no apostraphes, no grammar"
