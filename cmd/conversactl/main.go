package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/matheus3301/conversa/internal/api"
	"github.com/matheus3301/conversa/internal/content"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/tui/client"
	"github.com/matheus3301/conversa/internal/workspace"
)

func main() {
	workspaceFlag := flag.String("workspace", "", "workspace name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	name := workspace.Resolve(*workspaceFlag)
	if err := workspace.ValidateName(name); err != nil {
		fatal(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	c, err := client.New(workspace.SocketPath(name))
	if err != nil {
		fatal(fmt.Errorf("cannot connect to daemon for workspace %q: %w", name, err))
	}
	defer func() { _ = c.Close() }()

	if args[0] == "watch" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		cmdWatch(ctx, c, args[1:], *jsonFlag)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := command{ctx: ctx, c: c, json: *jsonFlag}
	switch args[0] {
	case "status":
		cmd.status()
	case "contacts":
		cmd.contacts(args[1:])
	case "view":
		cmd.view(need(args, 2, "view <peer>")[1])
	case "send":
		cmd.send(args[1:])
	case "edit":
		a := need(args, 4, "edit <peer> <message-id> <text>")
		cmd.edit(a[1], a[2], strings.Join(a[3:], " "))
	case "react":
		a := need(args, 4, "react <peer> <message-id> <emoji>")
		cmd.react(a[1], a[2], a[3])
	case "delete":
		a := need(args, 3, "delete <peer> <message-id>")
		cmd.delete(a[1], a[2])
	case "forward":
		a := need(args, 3, "forward <message-id> <recipient>...")
		cmd.forward(a[1], a[2:])
	case "media":
		cmd.media(need(args, 2, "media <peer>")[1])
	case "emoji":
		cmd.emoji(strings.Join(args[1:], " "))
	case "profile":
		cmd.profile(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: conversactl [--workspace <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                               Show daemon status")
	fmt.Fprintln(os.Stderr, "  contacts [--status s] [--search q]   List contacts")
	fmt.Fprintln(os.Stderr, "  view <peer>                          Show a conversation grouped by day")
	fmt.Fprintln(os.Stderr, "  send [--reply id] [--file path] [--caption c] <peer> [text]")
	fmt.Fprintln(os.Stderr, "  edit <peer> <message-id> <text>      Edit one of your messages")
	fmt.Fprintln(os.Stderr, "  react <peer> <message-id> <emoji>    Toggle a reaction")
	fmt.Fprintln(os.Stderr, "  delete <peer> <message-id>           Delete one of your messages")
	fmt.Fprintln(os.Stderr, "  forward <message-id> <recipient>...  Forward a message")
	fmt.Fprintln(os.Stderr, "  media <peer>                         List shared media")
	fmt.Fprintln(os.Stderr, "  emoji <query>                        Search the emoji catalog")
	fmt.Fprintln(os.Stderr, "  profile [--name n] [--status s] [--avatar path]  Show or edit your profile")
	fmt.Fprintln(os.Stderr, "  watch [kind-prefix]...               Stream daemon events")
}

type command struct {
	ctx  context.Context
	c    *client.Client
	json bool
}

func (cmd command) status() {
	resp, err := cmd.c.GetSessionStatus(cmd.ctx, &rpc.GetSessionStatusRequest{})
	check(err)
	if cmd.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("Workspace: %s\n", resp.Workspace)
	fmt.Printf("User:      %s\n", resp.UserID)
	fmt.Printf("Status:    %s\n", resp.Status)
	if resp.Reason != "" {
		fmt.Printf("Reason:    %s\n", resp.Reason)
	}
	fmt.Printf("Messages:  %d\n", resp.MessageCount)
	fmt.Printf("Uptime:    %s\n", (time.Duration(resp.UptimeMs) * time.Millisecond).Round(time.Second))
}

func (cmd command) contacts(args []string) {
	fs := flag.NewFlagSet("contacts", flag.ExitOnError)
	statusFlag := fs.String("status", "todos", "online, offline or todos")
	search := fs.String("search", "", "name filter")
	_ = fs.Parse(args)

	resp, err := cmd.c.ListContacts(cmd.ctx, &rpc.ListContactsRequest{Status: *statusFlag, Search: *search})
	check(err)
	if cmd.json {
		outputJSON(resp)
		return
	}
	if len(resp.Contacts) == 0 {
		fmt.Println("No contacts found.")
		return
	}
	for _, ct := range resp.Contacts {
		unread := ""
		if ct.Unread > 0 {
			unread = fmt.Sprintf(" (%d)", ct.Unread)
		}
		fmt.Printf("%-20s %-24s %s%s\n", ct.ID, ct.Name, ct.Status, unread)
	}
}

func (cmd command) open(peer string) *rpc.ConversationView {
	view, err := cmd.c.OpenConversation(cmd.ctx, &rpc.PeerRequest{Peer: peer})
	check(err)
	return view
}

func (cmd command) view(peer string) {
	view := cmd.open(peer)
	if cmd.json {
		outputJSON(view)
		return
	}
	fmt.Printf("%s (%s)", view.Peer.Name, view.Peer.Status)
	if view.PeerStatus != "" {
		fmt.Printf(" %s...", view.PeerStatus)
	}
	fmt.Println()
	for _, g := range view.Groups {
		fmt.Printf("\n-- %s --\n", g.Label)
		for _, m := range g.Messages {
			who := view.Peer.Name
			if m.Mine {
				who = "Eu"
			}
			body := m.Body
			if m.Kind != string(content.Text) {
				body = fmt.Sprintf("[%s] %s %s", m.Kind, m.Attachment, m.Caption)
			}
			fmt.Printf("%s %-10s %s", m.Time, who, body)
			if m.ReplyLabel != "" {
				fmt.Printf("  (resposta a: %s)", m.ReplyLabel)
			}
			for _, r := range m.Reactions {
				fmt.Printf("  %s%d", r.Emoji, r.Count)
			}
			fmt.Printf("  #%s\n", m.ID)
		}
	}
}

func (cmd command) send(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	reply := fs.String("reply", "", "message id to reply to")
	file := fs.String("file", "", "file to attach")
	caption := fs.String("caption", "", "caption for the attachment")
	_ = fs.Parse(args)
	rest := need(append([]string{"send"}, fs.Args()...), 2, "send [--reply id] [--file path] <peer> [text]")
	peer, text := rest[1], strings.Join(rest[2:], " ")

	cmd.open(peer)
	if *reply != "" {
		_, err := cmd.c.ReplyTo(cmd.ctx, &rpc.MessageRequest{Peer: peer, MessageID: *reply})
		check(err)
	}
	if *file != "" {
		data, err := os.ReadFile(*file)
		check(err)
		_, err = cmd.c.StageFile(cmd.ctx, &rpc.StageFileRequest{
			Peer:   peer,
			Source: "attachment",
			Name:   filepath.Base(*file),
			MIME:   detectMIME(*file, data),
			Data:   data,
		})
		check(err)
		if *caption != "" {
			_, err = cmd.c.SetCaption(cmd.ctx, &rpc.SetCaptionRequest{Peer: peer, Caption: *caption})
			check(err)
		}
	}
	if text != "" {
		_, err := cmd.c.SetText(cmd.ctx, &rpc.SetTextRequest{Peer: peer, Text: text})
		check(err)
	}
	resp, err := cmd.c.Send(cmd.ctx, &rpc.PeerRequest{Peer: peer})
	check(err)
	if cmd.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("Sent %s\n", resp.MessageID)
}

func (cmd command) edit(peer, id, text string) {
	cmd.open(peer)
	resp, err := cmd.c.BeginEdit(cmd.ctx, &rpc.MessageRequest{Peer: peer, MessageID: id})
	check(err)
	if !resp.Applied {
		fatal(errors.New("only your own messages can be edited"))
	}
	if resp.Composer.DraftKind != "" && resp.Composer.DraftKind != string(content.Text) {
		_, err = cmd.c.SetCaption(cmd.ctx, &rpc.SetCaptionRequest{Peer: peer, Caption: text})
	} else {
		_, err = cmd.c.SetText(cmd.ctx, &rpc.SetTextRequest{Peer: peer, Text: text})
	}
	check(err)
	sent, err := cmd.c.Send(cmd.ctx, &rpc.PeerRequest{Peer: peer})
	check(err)
	if cmd.json {
		outputJSON(sent)
		return
	}
	fmt.Printf("Edited %s\n", sent.MessageID)
}

func (cmd command) react(peer, id, emoji string) {
	cmd.open(peer)
	resp, err := cmd.c.React(cmd.ctx, &rpc.ReactRequest{Peer: peer, MessageID: id, Emoji: emoji})
	check(err)
	if cmd.json {
		outputJSON(resp)
		return
	}
	if resp.Added {
		fmt.Printf("Reacted %s\n", emoji)
	} else {
		fmt.Printf("Removed %s\n", emoji)
	}
}

func (cmd command) delete(peer, id string) {
	cmd.open(peer)
	resp, err := cmd.c.Delete(cmd.ctx, &rpc.MessageRequest{Peer: peer, MessageID: id})
	check(err)
	if cmd.json {
		outputJSON(resp)
		return
	}
	if !resp.Applied {
		fatal(errors.New("only your own messages can be deleted"))
	}
	fmt.Printf("Deleted %s\n", id)
}

func (cmd command) forward(id string, recipients []string) {
	resp, err := cmd.c.Forward(cmd.ctx, &rpc.ForwardRequest{MessageID: id, Recipients: recipients})
	check(err)
	if cmd.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("Forwarded to %d recipient(s), originally from %s\n", len(resp.MessageIDs), resp.OriginalSenderName)
}

func (cmd command) media(peer string) {
	cmd.open(peer)
	resp, err := cmd.c.SharedMedia(cmd.ctx, &rpc.PeerRequest{Peer: peer})
	check(err)
	if cmd.json {
		outputJSON(resp)
		return
	}
	for _, section := range []struct {
		title string
		items []rpc.MediaItem
	}{
		{"Imagens", resp.Images},
		{"Áudios", resp.Audios},
		{"Arquivos", resp.Attachments},
	} {
		fmt.Printf("%s (%d)\n", section.title, len(section.items))
		for _, it := range section.items {
			fmt.Printf("  %-32s %s\n", it.Name, it.URL)
		}
	}
}

func (cmd command) emoji(query string) {
	resp, err := cmd.c.SearchEmoji(cmd.ctx, &rpc.SearchEmojiRequest{Query: query})
	check(err)
	if cmd.json {
		outputJSON(resp)
		return
	}
	if query == "" {
		fmt.Println(strings.Join(resp.Quick, " "))
		return
	}
	for _, e := range resp.Results {
		fmt.Printf("%s  %s\n", e.Char, e.Name)
	}
}

func (cmd command) profile(args []string) {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	statusFlag := fs.String("status", "", "online, ausente or ocupado")
	avatar := fs.String("avatar", "", "image file for the profile picture")
	_ = fs.Parse(args)

	updating := *name != "" || *statusFlag != "" || *avatar != ""
	var (
		me  *rpc.Contact
		err error
	)
	if updating {
		req := &rpc.UpdateProfileRequest{Name: *name, Status: *statusFlag}
		if *avatar != "" {
			data, rerr := os.ReadFile(*avatar)
			check(rerr)
			req.AvatarName = filepath.Base(*avatar)
			req.AvatarMIME = detectMIME(*avatar, data)
			req.AvatarData = data
		}
		me, err = cmd.c.UpdateProfile(cmd.ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Erro ao atualizar o perfil: %v\n", err)
			os.Exit(1)
		}
	} else {
		me, err = cmd.c.GetProfile(cmd.ctx, &rpc.GetProfileRequest{})
		check(err)
	}
	if cmd.json {
		outputJSON(me)
		return
	}
	if updating {
		fmt.Println("Perfil atualizado com sucesso!")
	}
	fmt.Printf("Nome:   %s\n", me.Name)
	fmt.Printf("Status: %s\n", me.Status)
	if me.PhotoURL != "" {
		fmt.Printf("Foto:   %s\n", me.PhotoURL)
	}
}

func cmdWatch(ctx context.Context, c *client.Client, kinds []string, jsonOut bool) {
	stream, err := c.WatchEvents(ctx, &rpc.WatchEventsRequest{Kinds: kinds})
	check(err)
	for {
		env, err := stream.Recv()
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return
		}
		check(err)
		payload, err := api.DecodePayload(env.Payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode %s: %v\n", env.Kind, err)
			continue
		}
		if jsonOut {
			outputJSON(map[string]any{
				"event_id":    env.EventID,
				"kind":        env.Kind,
				"occurred_at": time.UnixMilli(env.OccurredAtUnixMs).Format(time.RFC3339Nano),
				"payload":     payload,
			})
			continue
		}
		line, _ := json.Marshal(payload)
		fmt.Printf("%s %-24s %s\n", time.UnixMilli(env.OccurredAtUnixMs).Format("15:04:05.000"), env.Kind, line)
	}
}

func detectMIME(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

func need(args []string, n int, usage string) []string {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "usage: conversactl %s\n", usage)
		os.Exit(1)
	}
	return args
}

func check(err error) {
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
