package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/Unity-Lab-AI/Trader-sub008/internal/session"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/game"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
)

const PlaceHolderText = "Type a command (help for the list)..."

// logKind classifies a line in the event log for styling.
type logKind int

const (
	logPlayer logKind = iota
	logWorld
	logEncounter
	logError
	logHelp
)

type logLine struct {
	kind logKind
	text string
}

// ConsoleUI is the interactive terminal client. It drives the session
// entirely through the HTTP API and acts as the presentation surface for
// generated encounters.
type ConsoleUI struct {
	client       *http.Client
	baseURL      string
	session      *state.SessionState
	log          []logLine
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type eventAppliedMsg struct {
	resp *ApplyEventResponse
	err  error
}

type sessionUpdatedMsg struct {
	session *state.SessionState
	note    string
	err     error
}

type bountyPaidMsg struct {
	resp *PayBountyResponse
	err  error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	worldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(client *http.Client, baseURL string, ss *state.SessionState) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		client:       client,
		baseURL:      baseURL,
		session:      ss,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
}

func (m *ConsoleUI) appendLog(kind logKind, text string) {
	m.log = append(m.log, logLine{kind: kind, text: text})
}

// activeEncounter returns the currently presented encounter, if any.
func (m *ConsoleUI) activeEncounter() *encounter.ActiveEncounter {
	if m.session == nil {
		return nil
	}
	for i := range m.session.Encounters.Active {
		if m.session.Encounters.Active[i].Status == encounter.StatusActive {
			return &m.session.Encounters.Active[i]
		}
	}
	return nil
}

func writeMetadata(ss *state.SessionState, enc *encounter.ActiveEncounter) string {
	tier := reputation.DefaultTierCatalog().TierForScore(ss.Reputation.Reputation)

	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(ss.ID.String()[:8] + "...\n\n")

	content.WriteString("Reputation:\n")
	content.WriteString(fmt.Sprintf("%d (%s)\n\n", ss.Reputation.Reputation, tier.Name))

	content.WriteString("Bounty:\n")
	content.WriteString(fmt.Sprintf("%d gold\n\n", ss.Reputation.Bounty))

	content.WriteString("Prices:\n")
	content.WriteString(fmt.Sprintf("x%.2f\n\n", tier.Effects.PriceModifier))

	content.WriteString("Game clock:\n")
	if ss.ClockSpeed == 0 {
		content.WriteString(fmt.Sprintf("%.0f min (paused)\n\n", ss.GameMinutes))
	} else {
		content.WriteString(fmt.Sprintf("%.0f min\n\n", ss.GameMinutes))
	}

	if enc != nil {
		content.WriteString(titleStyle.Render("ENCOUNTER") + "\n\n")
		content.WriteString(enc.NPC.Name + "\n")
		content.WriteString(enc.NPC.Archetype + "\n")
		if enc.NPC.CanTrade {
			content.WriteString(fmt.Sprintf("trades, %d gold\n", enc.NPC.Gold))
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• help: Help\n")

	return content.String()
}

func renderEncounter(enc *encounter.ActiveEncounter, width int) string {
	var b strings.Builder
	b.WriteString(npcStyle.Render(fmt.Sprintf("%s (%s)", enc.NPC.Name, enc.NPC.Archetype)) + "\n")

	desc := fmt.Sprintf("A %s figure approaches. %s", enc.NPC.Personality, enc.NPC.SpeakingStyle)
	switch enc.Context.Kind {
	case encounter.ContextTravel:
		desc = fmt.Sprintf("On the road from %s to %s, %s", enc.Context.From, enc.Context.To, desc)
	case encounter.ContextArrival:
		desc = fmt.Sprintf("As you arrive at %s, %s", enc.Context.LocationID, desc)
	case encounter.ContextWorldEvent:
		desc = fmt.Sprintf("Amid the %s at %s, %s", enc.Context.EventKind, enc.Context.LocationID, desc)
	}
	b.WriteString(wordwrap.String(desc, width) + "\n")

	if enc.NPC.CanTrade && len(enc.NPC.Inventory) > 0 {
		var items []string
		for _, it := range enc.NPC.Inventory {
			items = append(items, fmt.Sprintf("%s x%d", it.ItemID, it.Quantity))
		}
		b.WriteString(wordwrap.String("Wares: "+strings.Join(items, ", "), width) + "\n")
	}

	b.WriteString(promptStyle.Render("The clock is paused. Respond with talk, trade, ignore, or dismiss."))
	return b.String()
}

// writeChatContent rebuilds the event log for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("ENCOUNTER ENGINE") + "\n\n")
	content.WriteString("Act in the world and watch your reputation follow.\n")
	content.WriteString("Type help for the command list.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	for _, line := range m.log {
		switch line.kind {
		case logPlayer:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(line.text, chatWidth-6) + "\n\n")
		case logWorld:
			content.WriteString(worldStyle.Render(wordwrap.String(line.text, chatWidth)) + "\n\n")
		case logEncounter:
			content.WriteString(wordwrap.String(line.text, chatWidth) + "\n\n")
		case logError:
			content.WriteString(errorStyle.Render("Error: "+line.text) + "\n\n")
		case logHelp:
			content.WriteString(line.text + "\n")
		}
	}

	if enc := m.activeEncounter(); enc != nil {
		content.WriteString(renderEncounter(enc, chatWidth) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetaContent() {
	if m.session != nil {
		m.metaViewport.SetContent(writeMetadata(m.session, m.activeEncounter()))
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.writeMetaContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.handleInput(input)
		}

	case eventAppliedMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLog(logError, msg.err.Error())
		} else {
			m.session = msg.resp.Session
			m.describeOutcome(msg.resp.Outcome)
		}
		m.writeChatContent()
		m.writeMetaContent()
		return m, nil

	case sessionUpdatedMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLog(logError, msg.err.Error())
		} else {
			m.session = msg.session
			if msg.note != "" {
				m.appendLog(logWorld, msg.note)
			}
		}
		m.writeChatContent()
		m.writeMetaContent()
		return m, nil

	case bountyPaidMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLog(logError, msg.err.Error())
		} else {
			m.session = msg.resp.Session
			m.appendLog(logWorld, fmt.Sprintf("The clerk stamps the ledger. Bounty now %d gold, %d gold left in your purse.",
				msg.resp.Session.Reputation.Bounty, msg.resp.RemainingGold))
		}
		m.writeChatContent()
		m.writeMetaContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// describeOutcome appends log lines for an applied event's outcome.
func (m *ConsoleUI) describeOutcome(out *session.EventOutcome) {
	if out == nil {
		return
	}
	if out.Delta != 0 {
		sign := "+"
		if out.Delta < 0 {
			sign = ""
		}
		m.appendLog(logWorld, fmt.Sprintf("Reputation %s%d, now %d (%s).", sign, out.Delta, out.NewTotal, out.Tier))
	} else if out.Action != "" {
		m.appendLog(logWorld, fmt.Sprintf("Noted. Reputation holds at %d (%s).", out.NewTotal, out.Tier))
	}
	for _, ft := range out.FiredTriggers {
		switch ft.EffectID {
		case "guard_ambush":
			m.appendLog(logWorld, "Guards spill from the gatehouse with blades drawn. Your name is known here.")
		case "bounty_hunter":
			m.appendLog(logWorld, "A bounty hunter peels away from the crowd, eyes fixed on you.")
		case "npc_flees":
			m.appendLog(logWorld, "They take one look at you and bolt.")
		default:
			m.appendLog(logWorld, fmt.Sprintf("The world reacts: %s.", ft.EffectID))
		}
	}
	if out.Encounter != nil {
		m.appendLog(logEncounter, "Someone crosses your path.")
	}
}

const helpText = `
Commands:
• quest done [multiplier] - Report a completed quest
• quest fail              - Report a failed quest
• kill <archetype>        - Report a combat victory (guard, bandit, citizen...)
• travel <from> <to>      - Complete a journey between locations
• enter <location>        - Arrive at a location
• discover <location>     - Discover a new location
• greet <npc-id>          - Interact with a named NPC
• event <location> <kind> - A world event reaches you (festival, raid...)
• talk | trade | ignore   - Respond to the encounter in front of you
• dismiss                 - Wave the encounter away without engaging
• pay <amount> <gold>     - Pay down your bounty from a purse of <gold>
• help                    - Show this help
`

func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	m.appendLog(logPlayer, input)

	fields := strings.Fields(input)
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	var ev game.Event
	switch verb {
	case "help", "/help":
		m.appendLog(logHelp, titleStyle.Render("Help:")+helpText)
		m.writeChatContent()
		return m, nil

	case "quest":
		if len(args) == 0 {
			return m.inputError("usage: quest done [multiplier] | quest fail")
		}
		switch strings.ToLower(args[0]) {
		case "done":
			mult := 1.0
			if len(args) > 1 {
				v, err := strconv.ParseFloat(args[1], 64)
				if err != nil || v <= 0 {
					return m.inputError("multiplier must be a positive number")
				}
				mult = v
			}
			ev = game.QuestCompleted{Multiplier: mult}
		case "fail":
			ev = game.QuestFailed{}
		default:
			return m.inputError("usage: quest done [multiplier] | quest fail")
		}

	case "kill":
		if len(args) != 1 {
			return m.inputError("usage: kill <archetype>")
		}
		ev = game.CombatVictory{EnemyArchetype: args[0]}

	case "travel":
		if len(args) != 2 {
			return m.inputError("usage: travel <from> <to>")
		}
		ev = game.TravelCompleted{From: args[0], To: args[1]}

	case "enter":
		if len(args) != 1 {
			return m.inputError("usage: enter <location>")
		}
		ev = game.LocationEntered{LocationID: args[0]}

	case "discover":
		if len(args) != 1 {
			return m.inputError("usage: discover <location>")
		}
		ev = game.LocationDiscovered{LocationID: args[0]}

	case "greet":
		if len(args) != 1 {
			return m.inputError("usage: greet <npc-id>")
		}
		ev = game.NPCInteracted{NPCID: args[0]}

	case "event":
		if len(args) != 2 {
			return m.inputError("usage: event <location> <kind>")
		}
		ev = game.WorldEvent{LocationID: args[0], EventKind: args[1]}

	case "talk", "trade", "ignore":
		enc := m.activeEncounter()
		if enc == nil {
			return m.inputError("no one is waiting on your answer")
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.resolveCmd(enc.ID, encounter.Resolution(verb)), progressTick())

	case "dismiss":
		enc := m.activeEncounter()
		if enc == nil {
			return m.inputError("no one is waiting on your answer")
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.dismissCmd(enc.ID), progressTick())

	case "pay":
		if len(args) != 2 {
			return m.inputError("usage: pay <amount> <gold-on-hand>")
		}
		amount, err1 := strconv.Atoi(args[0])
		wallet, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return m.inputError("amount and gold must be whole numbers")
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.payBountyCmd(amount, wallet), progressTick())

	default:
		return m.inputError(fmt.Sprintf("unknown command %q, type help for the list", verb))
	}

	m.loading = true
	m.progressTick = 0
	m.writeChatContent()
	return m, tea.Batch(m.applyEventCmd(ev), progressTick())
}

func (m ConsoleUI) inputError(text string) (tea.Model, tea.Cmd) {
	m.appendLog(logError, text)
	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) applyEventCmd(ev game.Event) tea.Cmd {
	return func() tea.Msg {
		resp, err := applyEvent(m.client, m.baseURL, m.session.ID, ev)
		if err != nil {
			return eventAppliedMsg{nil, err}
		}
		return eventAppliedMsg{resp, nil}
	}
}

func (m ConsoleUI) resolveCmd(encounterID string, resolution encounter.Resolution) tea.Cmd {
	return func() tea.Msg {
		notes := map[encounter.Resolution]string{
			encounter.ResolutionTalk:   "You trade words for a while, then part ways. The road moves again.",
			encounter.ResolutionTrade:  "Goods and gold change hands. The road moves again.",
			encounter.ResolutionIgnore: "You walk on without a word. The road moves again.",
		}
		ss, err := resolveEncounter(m.client, m.baseURL, m.session.ID, encounterID, resolution)
		return sessionUpdatedMsg{ss, notes[resolution], err}
	}
}

func (m ConsoleUI) dismissCmd(encounterID string) tea.Cmd {
	return func() tea.Msg {
		ss, err := dismissEncounter(m.client, m.baseURL, m.session.ID, encounterID)
		return sessionUpdatedMsg{ss, "You wave them off. The road moves again.", err}
	}
}

func (m ConsoleUI) payBountyCmd(amount, wallet int) tea.Cmd {
	return func() tea.Msg {
		resp, err := payBounty(m.client, m.baseURL, m.session.ID, amount, wallet)
		return bountyPaidMsg{resp, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Your session is saved on the server and can be resumed with -session.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for in-flight requests.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
