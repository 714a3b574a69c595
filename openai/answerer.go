package openai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/civdoc/civdoc"
)

// topK is the number of documents retrieved for each question.
const topK = 5

const systemPrompt = "You are a friendly chatbot. " +
	"You respond in a concise, technically credible tone (but do not hesitate to add examples if needed). " +
	"You only use information from the provided information. " +
	"Please add the link of the relevant documents to the end of your response (do not invent url, only use the one we provided)."

// Ensure Answerer implements civdoc.Answerer at compile time.
var _ civdoc.Answerer = (*Answerer)(nil)

// Answerer implements retrieval-augmented answering: it embeds the user
// question, retrieves the nearest documents, and conditions a chat
// completion on them plus the discussion history.
type Answerer struct {
	client   *Client
	docs     civdoc.DocumentService
	messages civdoc.MessageService
}

// NewAnswerer creates a new Answerer.
func NewAnswerer(client *Client, docs civdoc.DocumentService, messages civdoc.MessageService) *Answerer {
	return &Answerer{client: client, docs: docs, messages: messages}
}

// Answer returns the generated answer for userText within the discussion.
//
// The caller is expected to persist the user message before calling Answer,
// so the discussion history already ends with the current question. Answer
// itself never writes.
func (a *Answerer) Answer(ctx context.Context, discussionID, userText string) (string, error) {
	if discussionID == "" {
		return "", civdoc.Errorf(civdoc.EINVALID, "discussion ID required")
	}
	if strings.TrimSpace(userText) == "" {
		return "", civdoc.Errorf(civdoc.EINVALID, "question required")
	}

	vector, err := a.client.Embed(ctx, userText)
	if err != nil {
		return "", err
	}

	docs, err := a.docs.FindNearest(ctx, vector, topK)
	if err != nil {
		return "", err
	}

	history, err := a.messages.FindMessagesByDiscussion(ctx, discussionID)
	if err != nil {
		return "", err
	}

	return a.client.complete(ctx, chatModel, buildMessages(docs, history), 0)
}

// buildMessages assembles the generation request: the system instruction,
// a serialized block with exactly the retrieved documents, then the prior
// messages in chronological order with roles mapped from IsMe.
func buildMessages(docs []*civdoc.Document, history []*civdoc.Message) []chatMessage {
	messages := []chatMessage{{Role: "system", Content: systemPrompt}}

	var sb strings.Builder
	sb.WriteString("Relevant information:\n")
	for _, doc := range docs {
		line, err := json.Marshal(map[string]string{
			"title":   doc.Title,
			"content": doc.Content,
			"url":     doc.URL,
		})
		if err != nil {
			continue
		}
		sb.Write(line)
		sb.WriteString("\n")
	}
	messages = append(messages, chatMessage{Role: "system", Content: sb.String()})

	for _, m := range history {
		role := "assistant"
		if m.IsMe {
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Content})
	}

	return messages
}
