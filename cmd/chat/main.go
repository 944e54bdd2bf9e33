// Command chat is a terminal front end for the messaging engine. It is
// intentionally thin: all synchronization, presence and access-control
// logic lives in the internal packages; this binary only renders and
// forwards commands.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"go-chat-client/internal/api"
	"go-chat-client/internal/auth"
	"go-chat-client/internal/channel"
	"go-chat-client/internal/logger"
	"go-chat-client/internal/roster"
	"go-chat-client/internal/session"
)

func main() {
	parseFlags()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Initialize(flagLogLevel); err != nil {
		return err
	}

	if flagToken == "" {
		return fmt.Errorf("no access token: set -token or CHAT_TOKEN")
	}
	claims, err := auth.Parse(flagToken, flagSecret)
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	logger.Log.Info("logged in", zap.String("user", claims.ID), zap.String("name", claims.Name))

	client := api.New(flagServerURL, flagToken)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+flagToken)
	sock, err := channel.Dial(flagSocketURL, header)
	if err != nil {
		return fmt.Errorf("connect channel: %w", err)
	}
	defer sock.Close()

	ctx := context.Background()
	list, err := roster.Open(ctx, claims.ID, client, sock)
	if err != nil {
		return err
	}
	defer list.Close()

	repl(ctx, claims.ID, client, sock, list)
	return nil
}

func repl(ctx context.Context, selfID string, client *api.Client, sock *channel.Socket, list *roster.Roster) {
	var current *session.Session
	view := newTermView(os.Stdout)

	fmt.Println("commands: /chats, /open <id>, /older, /close, /rename <name>, /strict, /add <user>, /remove <user>, /leave, /delete, /friends [text], /befriend <id>, /create <id>, /group <name> <id...>, /quit")
	sc := bufio.NewScanner(os.Stdin)

	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "/") {
			if current == nil {
				fmt.Println("no open conversation; /open <id> first")
				continue
			}
			current.SetCompose(line)
			if err := current.SendMessage(line); err != nil {
				fmt.Println("cannot send:", err)
			}
			continue
		}

		cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
		switch cmd {
		case "chats":
			for _, c := range list.Direct() {
				fmt.Printf("  %s  %s\n", c.ID, list.Title(c))
			}
			for _, c := range list.Groups() {
				fmt.Printf("  %s  %s (group)\n", c.ID, list.Title(c))
			}

		case "open":
			if current != nil {
				current.Close()
			}
			s, err := session.Open(ctx, session.Config{
				ChatID:   arg,
				UserID:   selfID,
				API:      client,
				Channel:  sock,
				Viewport: view,
			})
			if err != nil {
				fmt.Println("open failed:", err)
				continue
			}
			current = s
			view.attach(s, selfID)

		case "older":
			if current != nil {
				if err := current.LoadOlder(true); err != nil {
					fmt.Println("load failed:", err)
				} else {
					view.renderAll()
				}
			}

		case "close":
			if current != nil {
				current.Close()
				current = nil
				view.attach(nil, selfID)
			}

		case "rename":
			if current != nil {
				if err := current.Rename(arg); err != nil {
					fmt.Println("rename failed:", err)
				}
			}

		case "strict":
			if current != nil {
				if err := current.ToggleStrict(); err != nil {
					fmt.Println("strict toggle failed:", err)
				}
			}

		case "add":
			if current != nil {
				if err := current.AddMember(arg); err != nil {
					fmt.Println("add failed:", err)
				}
			}

		case "remove":
			if current != nil {
				if err := current.RemoveMember(arg); err != nil {
					fmt.Println("remove failed:", err)
				}
			}

		case "leave":
			if current != nil {
				if err := current.Leave(); err != nil {
					fmt.Println("leave failed:", err)
				}
			}

		case "delete":
			if current != nil {
				if err := current.Delete(); err != nil {
					fmt.Println("delete failed:", err)
				}
			}

		case "friends":
			users, err := client.SearchFriends(ctx, selfID, arg)
			if err != nil {
				fmt.Println("search failed:", err)
				continue
			}
			for _, u := range users {
				status := "offline"
				if u.IsOnline {
					status = "online"
				}
				fmt.Printf("  %s  %s (%s)\n", u.ID, u.Name, status)
			}

		case "befriend":
			if err := client.AddFriend(ctx, selfID, arg); err != nil {
				fmt.Println("add friend failed:", err)
			}

		case "create":
			if err := client.CreateChat(ctx, selfID, []string{selfID, arg}, false, ""); err != nil {
				fmt.Println("create failed:", err)
			}

		case "group":
			name, rest, _ := strings.Cut(arg, " ")
			members := append([]string{selfID}, strings.Fields(rest)...)
			if name == "" || len(members) < 2 {
				fmt.Println("usage: /group <name> <id...>")
				continue
			}
			if err := client.CreateChat(ctx, selfID, members, true, name); err != nil {
				fmt.Println("create failed:", err)
			}

		case "quit":
			if current != nil {
				current.Close()
			}
			// Flip the presence flag on the way out.
			if err := client.UpdateUserStatus(ctx, selfID); err != nil {
				fmt.Println("status update failed:", err)
			}
			return

		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}
