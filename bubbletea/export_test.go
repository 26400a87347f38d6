package bubbletea

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}

// RenderPanel exports renderPanel for testing.
func RenderPanel(m Model) string {
	return m.renderPanel()
}
