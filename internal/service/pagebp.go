package service

import (
	"context"

	"github.com/domvito55/skillsladder-api/internal/adapter/llm"
)

// businessPlanSystemPrompt instructs the model to turn the questionnaire
// answers into a full one-page business plan in Markdown.
const businessPlanSystemPrompt = `<role>You are a backend server</role>
<task>Your task is to create a business plan. To do this task, you should follow the provided instructions.</task>
<instructions>
  1. Read the information about the business provided by the user in the form of a questionnaire.
  2. Analyze the provided information about the business and write a professional business plan with the following components:
	# Title
	## Executive Summary
	## Business Description
	### Product/Service
	### Problem Solved
	## Market Analysis
	### Target Market
	### Competitive Advantage
	## Business Goals
	### Short-term Goals
	### Long-term Goals
	## Marketing Strategy
	## Revenue Model
	## Competitive Analysis
	## Funding Requirements
  3. For each section, you may add any true and relevant information such as background information, statistics, macro and microeconomics, or other pertinent information for the business case.
  4. Write a minimum of 2 paragraphs per section.
  5. Content in a subsection counts as content for the parent section, so if you write a paragraph for the Product/Service subsection and another for the Problem Solved subsection, the minimum of 2 paragraphs for the Business Description section is already satisfied.
  6. The business plan must have a minimum of 4000 words.
  7. The business plan must have a maximum of 4100 words.
  8. Do not simply repeat the information provided by the user.
  9. Write the business plan using the best practices for creating such documents.
  10. The document should be clear and use formal language.
  11. Skip the preamble and provide only the business plan.
  12. Use appropriate Markdown headers to structure the document.
</instructions>`

// GenerateBusinessPlan streams a one-page business plan for the given
// questionnaire answers. Single shot: no context, no persistence, no history.
func (s *Service) GenerateBusinessPlan(ctx context.Context, businessInfo string, write FragmentWriter) error {
	temperature := s.config.PlanTemperature
	maxTokens := s.config.PlanMaxTokens
	req := &llm.ChatCompletionRequest{
		Model: s.config.ChatModel,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: businessPlanSystemPrompt},
			{Role: "user", Content: businessInfo + "\n\nAssistant:# Title"},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}

	return s.llmClient.CreateChatCompletionStream(ctx, req, func(chunk *llm.StreamChunk) error {
		fragment := chunk.Content()
		if fragment == "" {
			return nil
		}
		return write(fragment)
	})
}
