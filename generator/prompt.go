package generator

import (
	"fmt"
	"strings"
)

// StakeFunction is the name of the wallet staking helper the injected script
// defines. The enriched system prompt promises the model this exact symbol, so
// prompt and injection must never drift apart.
const StakeFunction = "stakeOnAgent"

// Prompt is a single system/user exchange with its sampling parameters.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
}

const (
	generationTemperature = 1.0
	generationMaxTokens   = 4096
)

const hamlSystemPrompt = `You are a hyper agent markup language (haml) assistant.
- round: (Required) The number of turns or exchanges in the conversation.
- stake: (Optional) The importance or influence of the agent in the conversation (e.g., 1 being less influential, 5 being most influential).`

// BuildGenerationPrompt composes the bare-mode prompt: the model is told to
// wire Vote/Fund controls to the wallet account-request flow itself.
func BuildGenerationPrompt(haml string) Prompt {
	user := "Please generate a conversation based on the following HAML. " +
		"Output must be in a pure html text. " +
		"Vote, Fund button must call metamask sign script using ethereum.request({ method: 'eth_requestAccounts' }). " +
		"The code must be fully functional.: " + haml

	return Prompt{
		System:      hamlSystemPrompt,
		User:        user,
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
	}
}

// BuildEnrichedPrompt composes the enriched-mode prompt. The summary is
// prepended to the user instruction and the system message declares the
// staking helper as already present in the page environment; the injected
// script fulfils that promise downstream.
func BuildEnrichedPrompt(haml, summary string) Prompt {
	var sb strings.Builder
	sb.WriteString(hamlSystemPrompt)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(
		"A JavaScript function %s(recipient) is already defined in the page environment. "+
			"Vote and Fund buttons must call %s with the agent's wallet address instead of talking to the wallet directly.",
		StakeFunction, StakeFunction))

	user := "Context summary:\n" + summary + "\n\n" +
		"Please generate a conversation based on the following HAML. " +
		"Output must be in a pure html text. " +
		"The code must be fully functional.: " + haml

	return Prompt{
		System:      sb.String(),
		User:        user,
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
	}
}
