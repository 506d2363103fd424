package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// PlantListModel is the bubbletea model for interactive plant selection.
type PlantListModel struct {
	Plants   []plant.Record
	Cursor   int
	Selected *plant.Record
	Height   int
	Offset   int
}

// NewPlantListModel creates a new plant list model.
func NewPlantListModel(plants []plant.Record) PlantListModel {
	return PlantListModel{
		Plants: plants,
		Height: 15,
	}
}

func (m PlantListModel) Init() tea.Cmd {
	return nil
}

func (m PlantListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Plants)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			rec := m.Plants[m.Cursor]
			m.Selected = &rec
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PlantListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Plant"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Plants) {
		end = len(m.Plants)
	}

	for i := m.Offset; i < end; i++ {
		rec := m.Plants[i]

		line := styleLatin.Render(rec.ScientificName)
		if rec.CommonName != "" {
			line += listDimStyle.Render(" · " + rec.CommonName)
		}

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if len(m.Plants) > m.Height {
		b.WriteString("\n" + listDimStyle.Render("…"))
	}
	return b.String()
}

// pickPlant runs the interactive picker and returns the chosen record.
func pickPlant(plants []plant.Record) (*plant.Record, error) {
	if len(plants) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no plants in database; run 'carecard fetch <name>' or 'carecard import <csv>' first")
	}

	program := tea.NewProgram(NewPlantListModel(plants))
	final, err := program.Run()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "run plant picker")
	}

	model, ok := final.(PlantListModel)
	if !ok || model.Selected == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no plant selected")
	}
	return model.Selected, nil
}
