package orchestrator

import (
	"strconv"
	"strings"
)

// DefaultQuestionPrompt asks the model for one question per agent.
// Placeholders: {num_agents}, {user_input}.
const DefaultQuestionPrompt = `You are an orchestrator that needs to create {num_agents} different questions to thoroughly analyze this topic from multiple angles.

Original user query: {user_input}

Generate exactly {num_agents} different, specific questions that will help gather comprehensive information about this topic.
Each question should approach the topic from a different angle (research, analysis, verification, alternatives, etc.).

Return your response as a JSON array of strings, like this:
["question 1", "question 2", "question 3", "question 4"]

Only return the JSON array, nothing else.`

// DefaultSynthesisPrompt merges agent outcomes into one answer.
// Placeholders: {num_responses}, {agent_responses}.
const DefaultSynthesisPrompt = `You have {num_responses} different AI agents that analyzed the same query from different perspectives.
Your job is to synthesize their responses into ONE comprehensive final answer.

Here are all the agent responses:

{agent_responses}

Some agents may have failed; their sections are marked "failed" and contain the error instead of an answer.
Do not invent content for failed agents. If information is missing because an agent failed, say so briefly.

IMPORTANT: Just synthesize these into ONE final comprehensive answer that combines the best information from all agents.
Do NOT call mark_task_complete or any other tools. Do NOT mention that you are synthesizing multiple responses.
Simply provide the final synthesized answer directly as your response.`

// renderQuestionPrompt fills the decomposition template.
func renderQuestionPrompt(tmpl, input string, n int) string {
	return strings.NewReplacer(
		"{num_agents}", strconv.Itoa(n),
		"{user_input}", input,
	).Replace(tmpl)
}

// renderSynthesisPrompt fills the synthesis template.
func renderSynthesisPrompt(tmpl, block string, n int) string {
	return strings.NewReplacer(
		"{num_responses}", strconv.Itoa(n),
		"{agent_responses}", block,
	).Replace(tmpl)
}
