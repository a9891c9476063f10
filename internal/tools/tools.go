// Package tools exposes the clinic assistant over MCP so agent hosts can
// book appointments and query the assistant programmatically.
package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clinicboard/medassist/internal/appointment"
	"github.com/clinicboard/medassist/internal/rag"
)

// Deps holds the services the tools operate on.
type Deps struct {
	Store    *appointment.Store
	Pipeline *rag.Pipeline
}

// Register adds all clinic tools to the server.
func Register(server *mcp.Server, deps *Deps) {
	registerBookTool(server, deps)
	registerListTool(server, deps)
	registerAskTool(server, deps)
}

// errorResult builds a tool error response.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

// BookInput represents input for the book_appointment tool.
type BookInput struct {
	Name   string `json:"name" jsonschema:"Patient full name"`
	Email  string `json:"email" jsonschema:"Contact email"`
	Phone  string `json:"phone" jsonschema:"Contact phone number"`
	Date   string `json:"date" jsonschema:"Appointment date (YYYY-MM-DD)"`
	Time   string `json:"time" jsonschema:"Appointment time (HH:MM)"`
	Reason string `json:"reason,omitempty" jsonschema:"Reason for the visit"`
}

// BookOutput represents output from the book_appointment tool.
type BookOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func registerBookTool(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "book_appointment",
		Description: `Book a clinic appointment.

All of name, email, phone, date (YYYY-MM-DD) and time (HH:MM) are required.
The booking is appended to the clinic's appointment list; there is no
availability check or deduplication.

Example:
  book_appointment {name: "Ada Lovelace", email: "ada@example.com", phone: "555-0100", date: "2026-09-15", time: "10:30", reason: "annual checkup"}`,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input BookInput) (*mcp.CallToolResult, BookOutput, error) {
		appt := appointment.Appointment{
			Name:   input.Name,
			Email:  input.Email,
			Phone:  input.Phone,
			Date:   input.Date,
			Time:   input.Time,
			Reason: input.Reason,
		}

		if err := deps.Store.Add(appt); err != nil {
			return errorResult(err.Error()), BookOutput{Error: err.Error()}, nil
		}

		msg := fmt.Sprintf("Appointment booked for %s on %s at %s", input.Name, input.Date, input.Time)
		return nil, BookOutput{Success: true, Message: msg}, nil
	})
}

// ListInput represents input for the list_appointments tool.
type ListInput struct{}

// ListOutput represents output from the list_appointments tool.
type ListOutput struct {
	Appointments []appointment.Appointment `json:"appointments"`
	Count        int                       `json:"count"`
	Error        string                    `json:"error,omitempty"`
}

func registerListTool(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_appointments",
		Description: "List all booked clinic appointments in booking order.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
		items, err := deps.Store.List()
		if err != nil {
			return errorResult(err.Error()), ListOutput{Error: err.Error()}, nil
		}
		return nil, ListOutput{Appointments: items, Count: len(items)}, nil
	})
}

// AskInput represents input for the ask_assistant tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"Question for the clinic assistant"`
}

// AskOutput represents output from the ask_assistant tool.
type AskOutput struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

func registerAskTool(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "ask_assistant",
		Description: `Ask the clinic assistant a question.

The answer is grounded in the clinic's knowledge base where possible
(hours, policies, general health information). Not for emergencies.`,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
		if deps.Pipeline == nil {
			return errorResult("assistant is not configured"), AskOutput{Error: "assistant is not configured"}, nil
		}

		answer, err := deps.Pipeline.Answer(ctx, input.Question)
		if err != nil {
			return errorResult(err.Error()), AskOutput{Error: err.Error()}, nil
		}
		return nil, AskOutput{Answer: answer}, nil
	})
}
