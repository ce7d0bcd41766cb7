package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/iaa/internal/generate"
	"github.com/sandeepkv93/iaa/internal/views"
)

const chatMarkdownWidth = 56

func (m Model) handleChatKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "i", "enter":
		m.Editing = true
		m.chatInput.Focus()
		return m, nil
	case "y":
		return m.acceptProposal()
	case "n":
		if m.Chat.Proposal != nil {
			m.Chat.Proposal = nil
			m.Status = StatusBar{Text: "proposal dismissed"}
		}
	case "x":
		m.Chat = ChatState{}
		m.Status = StatusBar{Text: "chat cleared"}
	}
	return m, nil
}

func (m Model) handleChatEditingKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Editing = false
		m.chatInput.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" {
			return m, nil
		}
		if m.pending[opChat] {
			m.Status = StatusBar{Text: "waiting for the coach to answer"}
			return m, nil
		}
		m.chatInput.SetValue("")
		return m.sendChat(text)
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m Model) applyChatReply(msg chatReplyMsg) Model {
	delete(m.pending, opChat)
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: describe(msg.Err), IsError: true}
		return m
	}
	reply := msg.Reply
	content := reply.Content
	if reply.Proposal != nil {
		p := *reply.Proposal
		m.Chat.Proposal = &p
		if content == "" {
			content = generate.FormatProposal(p)
		}
	}
	if content != "" {
		m.Chat.History = append(m.Chat.History, generate.Message{Role: generate.RoleAssistant, Content: content})
	}
	if reply.Fallback {
		m.Status = StatusBar{Text: "the coach is unavailable right now", IsError: true}
	}
	return m
}

func (m Model) renderChatView() string {
	lines := make([]views.ChatLineData, 0, len(m.Chat.History))
	for _, msg := range m.Chat.History {
		content := msg.Content
		if msg.Role == generate.RoleAssistant {
			content = views.RenderMarkdown(content, chatMarkdownWidth)
		}
		lines = append(lines, views.ChatLineData{Role: msg.Role, Content: content})
	}
	var proposal *views.ProposalData
	if p := m.Chat.Proposal; p != nil {
		proposal = &views.ProposalData{Title: p.Title, Duration: p.Duration, Reasoning: p.Reasoning, Todos: p.Todos}
	}
	return views.RenderChatPanel(views.ChatPanelData{
		Lines:     lines,
		InputView: m.chatInput.View(),
		Editing:   m.Editing,
		Proposal:  proposal,
		Busy:      m.busyLine(opChat, "thinking..."),
	})
}
