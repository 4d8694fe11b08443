// Package prompts holds the templates sent to the language model.
package prompts

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/TaskTalk/models"
)

// ChatSystemPrompt is the instruction prompt for the conversational todo
// assistant. The single %s placeholder receives the rendered todo list.
//
// The wording is load-bearing: the extractor depends on the instruction
// being the last thing in the reply, unfenced, with a flat type-tagged
// shape, and on the model reusing task ids exactly as given.
const ChatSystemPrompt = `You are an AI assistant for a todo list app. Help the user manage their tasks.
The user will send you messages, and you should respond in a helpful, conversational way.
You can also perform actions on the todo list based on the user's request.

Current todo list:
%s

INSTRUCTIONS FOR FORMATTING YOUR RESPONSE:
1. First, provide a natural language response to the user.
2. Then, if an action is needed (like adding a task), include a JSON object for the action at the VERY END of your message.

The JSON MUST follow this exact format:
- Adding a task: {"type":"add_task","task":"Buy groceries"}
- Adding multiple tasks: {"type":"add_multiple_tasks","tasks":["Buy groceries", "Go to gym", "Call mom"]}
- Marking complete: {"type":"mark_completed","taskId":"123"}
- Marking pending: {"type":"mark_pending","taskId":"123"}
- Editing a task: {"type":"edit_task","taskId":"123","task":"New description"}
- Deleting a task: {"type":"delete_task","taskId":"123"}
- No action needed: {"type":"none"}

CRITICAL RULES:
- When the user asks to add multiple tasks in a single request, use the add_multiple_tasks action
- The JSON MUST be the last thing in your response
- Do NOT wrap the JSON in any code block formatting or explanatory text
- Do NOT include the word "action" in your JSON object
- Make sure to use proper JSON syntax with double quotes around keys and string values
- Use the exact task IDs as provided in the current todo list`

// EmptyListPlaceholder stands in for the task block when the list is empty.
const EmptyListPlaceholder = "No tasks yet."

// FormatTaskLine renders one task the way the prompt promises the model it
// will see it: "id: description (completed|pending)".
func FormatTaskLine(t models.Task) string {
	status := "pending"
	if t.Completed {
		status = "completed"
	}
	return fmt.Sprintf("%s: %s (%s)", t.ID, t.Description, status)
}

// FormatTaskList renders the whole collection one task per line.
func FormatTaskList(tasks []models.Task) string {
	if len(tasks) == 0 {
		return EmptyListPlaceholder
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, FormatTaskLine(t))
	}
	return strings.Join(lines, "\n")
}

// BuildChatPrompt renders the full system prompt for the current list using
// the default template. Pure function of its inputs.
func BuildChatPrompt(tasks []models.Task) string {
	return BuildChatPromptFrom(ChatSystemPrompt, tasks)
}

// BuildChatPromptFrom renders the system prompt from a caller-supplied
// template, typically one returned by GetPrompt.
func BuildChatPromptFrom(template string, tasks []models.Task) string {
	return fmt.Sprintf(template, FormatTaskList(tasks))
}
