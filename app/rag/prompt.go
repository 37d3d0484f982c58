package rag

import (
	"fmt"
	"strings"

	"claimrag/types"
)

// SystemPrompt establishes the analyst persona and disclaimers. Fixed for
// every query.
const SystemPrompt = "You are a specialized AUTO INSURANCE data analyst. " +
	"Provide accurate, data-driven insights about auto insurance premiums, claims, and risk factors. " +
	"Always mention when data is limited or when general recommendations should be verified with insurance professionals."

const promptTemplate = `You are an expert AUTO INSURANCE analyst and advisor.
Analyze the following auto insurance claims and customer data to provide insights.

IMPORTANT GUIDELINES:
- Focus specifically on AUTO INSURANCE factors (age, vehicle type, driving history, location)
- Consider risk assessment, premium calculation factors, and claims patterns
- Provide data-driven insights based on the retrieved cases
- Include relevant statistics if patterns emerge
- Mention limitations of the data when giving advice

RETRIEVED AUTO INSURANCE DATA:
---------------------
%s
---------------------

QUESTION: %s

Provide a comprehensive analysis covering:
1. Direct answer based on the data
2. Key patterns or trends observed
3. Risk factors that influence premiums/claims
4. Any limitations or caveats

ANSWER:`

// BuildContext renders the retrieved chunks into the context block, rank
// order preserved. Each case gets an Additional Info line; a metadata field
// that is absent renders as N/A, never an error. An empty retrieval yields
// an empty string.
func BuildContext(chunks []types.RetrievedChunk) string {
	var parts []string
	for i, chunk := range chunks {
		parts = append(parts, fmt.Sprintf("Case %d: %s", i+1, chunk.Content))
		if len(chunk.Metadata) > 0 {
			parts = append(parts, fmt.Sprintf("Additional Info: Premium: $%s, Deductible: $%s, State: %s",
				metaValue(chunk.Metadata, "policy_annual_premium"),
				metaValue(chunk.Metadata, "policy_deductable"),
				metaValue(chunk.Metadata, "policy_state"),
			))
		}
	}
	return strings.Join(parts, "\n\n")
}

func metaValue(md map[string]any, key string) string {
	v, ok := md[key]
	if !ok || v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%v", v)
}

// BuildPrompt embeds the context block and the literal query into the fixed
// user message.
func BuildPrompt(contextBlock, query string) string {
	return fmt.Sprintf(promptTemplate, contextBlock, query)
}

// Footer notes how many retrieved cases informed the answer.
func Footer(cases int) string {
	return fmt.Sprintf("\n\n📊 Based on %d similar cases from the database", cases)
}
