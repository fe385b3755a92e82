// Package command turns a raw input line into a tagged Command. One
// tokenizer owns the whole grammar; dispatch happens elsewhere via an
// exhaustive switch, so verb overlap can never creep in.
package command

import (
	"strconv"
	"strings"

	"github.com/rgutzeit/plausch/internal/domain"
)

type Kind int

const (
	Chat Kind = iota
	Rename
	Whisper
	Join
	Main
	Online
	Members
	Rooms
	Help
	Kick
	Ban
	Unban
	Mute
	Unmute
	Promote
	Demote
	RenameOther
	BanLog
	MuteLog
	Call
	OpenCall
	JoinCall
	LeaveCall
	GrantOwner
	Unknown
)

// Command is the parse result. Which fields are set depends on Kind.
type Command struct {
	Kind    Kind
	Name    string          // target user, or the new name for Rename
	Arg     string          // second argument (new name for RenameOther)
	Room    domain.RoomName // Join target
	Text    string          // chat or whisper body
	Minutes int             // mute/ban duration
	Verb    string          // the unrecognized verb, for Unknown
	// Shortcut marks a bare-room-token join (/<room> with no verb). The
	// dispatcher only honors it when the room actually exists; otherwise
	// the line is an unknown command.
	Shortcut bool
}

// UsageError reports an arity mismatch together with the expected form.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

func usage(form string) (Command, error) {
	return Command{}, &UsageError{Usage: form}
}

// Parse classifies a trimmed line. The owner secret is matched before any
// verb; a non-command line is plain chat. Verbs are case-sensitive.
func Parse(line, ownerSecret string) (Command, error) {
	line = strings.TrimSpace(line)

	if ownerSecret != "" && line == ownerSecret {
		return Command{Kind: GrantOwner}, nil
	}
	if !strings.HasPrefix(line, "/") {
		return Command{Kind: Chat, Text: line}, nil
	}

	fields := strings.Fields(line)
	verb := fields[0]

	switch verb {
	case "/name":
		if len(fields) != 2 {
			return usage("/name <name>")
		}
		return Command{Kind: Rename, Name: fields[1]}, nil

	case "/msg":
		rest := strings.SplitN(line, " ", 3)
		if len(rest) != 3 || strings.TrimSpace(rest[2]) == "" {
			return usage("/msg <name> <text>")
		}
		return Command{Kind: Whisper, Name: rest[1], Text: strings.TrimSpace(rest[2])}, nil

	case "/join":
		if len(fields) != 2 {
			return usage("/join <room>")
		}
		return Command{Kind: Join, Room: domain.RoomName(fields[1])}, nil

	case "/main":
		return bare(fields, Main, "/main")
	case "/online":
		return bare(fields, Online, "/online")
	case "/members":
		return bare(fields, Members, "/members")
	case "/rooms":
		return bare(fields, Rooms, "/rooms")
	case "/help":
		return bare(fields, Help, "/help")
	case "/banlog":
		return bare(fields, BanLog, "/banlog")
	case "/mutelog":
		return bare(fields, MuteLog, "/mutelog")
	case "/opencall":
		return bare(fields, OpenCall, "/opencall")
	case "/joincall":
		return bare(fields, JoinCall, "/joincall")
	case "/leavecall":
		return bare(fields, LeaveCall, "/leavecall")

	case "/kick":
		return oneName(fields, Kick, "/kick <name>")
	case "/sry":
		return oneName(fields, Unban, "/sry <name>")
	case "/demute":
		return oneName(fields, Unmute, "/demute <name>")
	case "/op":
		return oneName(fields, Promote, "/op <name>")
	case "/deop":
		return oneName(fields, Demote, "/deop <name>")
	case "/call":
		return oneName(fields, Call, "/call <name>")

	case "/mute":
		return timed(fields, Mute, "/mute <name> <minutes>")
	case "/ban":
		return timed(fields, Ban, "/ban <name> <minutes>")

	case "/Aname":
		if len(fields) != 3 {
			return usage("/Aname <name> <newname>")
		}
		return Command{Kind: RenameOther, Name: fields[1], Arg: fields[2]}, nil
	}

	// Bare-room-token shortcut: "/TeamX" joins TeamX if such a room is
	// live. The existence check is the dispatcher's.
	if token := strings.TrimPrefix(verb, "/"); len(fields) == 1 && domain.ValidRoomName(domain.RoomName(token)) {
		return Command{Kind: Join, Room: domain.RoomName(token), Shortcut: true}, nil
	}

	return Command{Kind: Unknown, Verb: verb}, nil
}

func bare(fields []string, kind Kind, form string) (Command, error) {
	if len(fields) != 1 {
		return usage(form)
	}
	return Command{Kind: kind}, nil
}

func oneName(fields []string, kind Kind, form string) (Command, error) {
	if len(fields) != 2 {
		return usage(form)
	}
	return Command{Kind: kind, Name: fields[1]}, nil
}

func timed(fields []string, kind Kind, form string) (Command, error) {
	if len(fields) != 3 {
		return usage(form)
	}
	minutes, err := strconv.Atoi(fields[2])
	if err != nil || minutes <= 0 {
		return usage(form)
	}
	return Command{Kind: kind, Name: fields[1], Minutes: minutes}, nil
}
