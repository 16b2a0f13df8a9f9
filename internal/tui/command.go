package tui

import (
	"fmt"
	"strings"
)

// CommandKind identifies a ":" command.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdContact
	CmdFilter
	CmdShare
	CmdProfile
	CmdMedia
	CmdEmoji
	CmdHelp
	CmdQuit
)

// Command is a parsed ":" command line.
type Command struct {
	Kind CommandKind
	Name string
	Args string
}

var commandAliases = map[string]CommandKind{
	"contact": CmdContact, "c": CmdContact, "contato": CmdContact,
	"online": CmdFilter, "offline": CmdFilter, "all": CmdFilter, "todos": CmdFilter,
	"share": CmdShare, "compartilhar": CmdShare,
	"profile": CmdProfile, "perfil": CmdProfile, "configuracoes": CmdProfile,
	"media": CmdMedia, "midia": CmdMedia,
	"emoji": CmdEmoji, "e": CmdEmoji,
	"help": CmdHelp, "h": CmdHelp, "ajuda": CmdHelp,
	"quit": CmdQuit, "q": CmdQuit, "sair": CmdQuit,
}

// ParseCommand parses input without the leading ':'.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	name, args, _ := strings.Cut(input, " ")
	cmd := Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
	cmd.Kind = commandAliases[cmd.Name]
	return cmd
}

// Filter returns the contact status filter of a CmdFilter command.
func (c Command) Filter() string {
	switch c.Name {
	case "online", "offline":
		return c.Name
	default:
		return "todos"
	}
}

// Validate reports missing arguments.
func (c Command) Validate() error {
	switch c.Kind {
	case CmdUnknown:
		return fmt.Errorf("comando desconhecido: %q", c.Name)
	case CmdContact:
		if c.Args == "" {
			return fmt.Errorf("uso: :contact <nome>")
		}
	}
	return nil
}
