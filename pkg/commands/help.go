package commands

import (
	"context"
	"strings"
)

// Reply sends a line of text back to the user who ran a command.
type Reply func(ctx context.Context, userID string, text string) error

// HelpCommand lists the usage of every command registered on router.
func HelpCommand(router *Router, reply Reply) Command {
	return Command{
		Name:  "help",
		Usage: "/help",
		Handler: func(ctx context.Context, inv Invocation) error {
			lines := []string{"Commands:"}
			for _, name := range router.Names() {
				cmd, ok := router.Lookup(name)
				if !ok {
					continue
				}
				line := "/" + cmd.Name
				if len(cmd.Aliases) > 0 {
					line += " (/" + strings.Join(cmd.Aliases, ", /") + ")"
				}
				if cmd.Usage != "" {
					line += " " + cmd.Usage
				}
				lines = append(lines, line)
			}
			for _, line := range lines {
				if err := reply(ctx, inv.UserID, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
