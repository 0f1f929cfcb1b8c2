package serverselect

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/branchd-dev/storefront/internal/cli/config"
	"github.com/branchd-dev/storefront/internal/cli/userconfig"
)

// ErrNoServers is returned when storefront.yaml lists no backend
var ErrNoServers = errors.New("no servers configured in storefront.yaml")

// Selector resolves the backend profile a command runs against
type Selector struct {
	// Interactive reports whether a prompt may be shown
	Interactive func() bool
	// Prompt picks one of the servers
	Prompt func(servers []config.Server) (int, error)
	// Warnings receives non-fatal problems
	Warnings io.Writer
}

// New returns a Selector prompting on the terminal
func New() *Selector {
	return &Selector{
		Interactive: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		Prompt:      PromptServerSelection,
		Warnings:    os.Stderr,
	}
}

// ResolveServer determines which server to use based on the following priority:
// 1. If urlOrAlias is provided, use that server
// 2. If user has a selected server in their local config, use that
// 3. If only one server in project config, use that
// 4. Otherwise, prompt user to select a server interactively
func (s *Selector) ResolveServer(projectConfig *config.Config, urlOrAlias string) (*config.Server, error) {
	// Priority 1: Use the server named on the command line
	if urlOrAlias != "" {
		return projectConfig.GetServer(urlOrAlias)
	}

	// Priority 2: Use selected server from user config
	selectedURL, err := userconfig.GetSelectedServer()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selectedURL != "" {
		server, err := projectConfig.GetServer(selectedURL)
		if err == nil {
			return server, nil
		}
		// Selected server no longer exists in project config, clear it and continue
		_ = userconfig.SetSelectedServer("")
	}

	switch len(projectConfig.Servers) {
	case 0:
		return nil, ErrNoServers
	case 1:
		// Priority 3: If only one server, use it automatically
		server := &projectConfig.Servers[0]
		s.remember(server)
		return server, nil
	}

	// Priority 4: Prompt user to select a server
	if !s.Interactive() {
		return nil, fmt.Errorf("%d servers configured and no terminal to choose one; run 'storefront select-server <url-or-alias>'", len(projectConfig.Servers))
	}

	index, err := s.Prompt(projectConfig.Servers)
	if err != nil {
		return nil, err
	}
	server := &projectConfig.Servers[index]
	s.remember(server)
	return server, nil
}

// Select prompts for a server, or resolves urlOrAlias when given, and saves the choice
func (s *Selector) Select(projectConfig *config.Config, urlOrAlias string) (*config.Server, error) {
	var server *config.Server
	if urlOrAlias != "" {
		found, err := projectConfig.GetServer(urlOrAlias)
		if err != nil {
			return nil, err
		}
		server = found
	} else {
		if len(projectConfig.Servers) == 0 {
			return nil, ErrNoServers
		}
		if !s.Interactive() {
			return nil, fmt.Errorf("no terminal to choose a server; pass a URL or alias")
		}
		index, err := s.Prompt(projectConfig.Servers)
		if err != nil {
			return nil, err
		}
		server = &projectConfig.Servers[index]
	}

	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		return nil, fmt.Errorf("failed to save selected server: %w", err)
	}
	return server, nil
}

func (s *Selector) remember(server *config.Server) {
	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		// Don't fail if we can't save, just continue
		fmt.Fprintf(s.Warnings, "Warning: failed to save selected server: %v\n", err)
	}
}

// PromptServerSelection shows an interactive prompt for the user to select a server
func PromptServerSelection(servers []config.Server) (int, error) {
	if len(servers) == 0 {
		return 0, ErrNoServers
	}

	labels := make([]string, len(servers))
	for i, server := range servers {
		labels[i] = server.Label()
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a server",
		Items:     labels,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("server selection cancelled: %w", err)
	}

	return index, nil
}
