package handler

import (
	"fmt"
	"strings"

	"storedb/internal/acl"
	"storedb/internal/protocol"
)

// checkAuth enforces the authentication step of command dispatch: a client must
// authenticate before running anything but AUTH/HELLO/QUIT/RESET once the
// resolved user requires a password, and every authenticated command is
// checked against that user's command/key ACL. Returns the error response
// and true if the command must be rejected.
func (h *CommandHandler) checkAuth(client *Client, command string, args []string) ([]byte, bool) {
	if h.acl == nil {
		return nil, false
	}

	switch command {
	case "AUTH", "HELLO", "QUIT", "RESET":
		return nil, false
	}

	user, ok := h.acl.GetUser(client.Username)
	if !ok || !user.Enabled {
		return protocol.EncodeError("NOAUTH Authentication required."), true
	}
	if !user.NoPass && !client.Authenticated {
		return protocol.EncodeError("NOAUTH Authentication required."), true
	}

	if !h.acl.CheckCommand(client.Username, command) {
		h.acl.RecordDenial("command", command, command, client.Username)
		return protocol.EncodeError(fmt.Sprintf("NOPERM User %s has no permissions to run the '%s' command", client.Username, strings.ToLower(command))), true
	}

	for _, key := range GetWriteKeys(command, args) {
		if !h.acl.CheckKey(client.Username, key) {
			h.acl.RecordDenial("key", command, key, client.Username)
			return protocol.EncodeError("NOPERM No permissions to access a key"), true
		}
	}

	return nil, false
}

// handleAuth implements AUTH [username] password.
func (h *CommandHandler) handleAuth(cmd *protocol.Command, client *Client) []byte {
	if h.acl == nil {
		return protocol.EncodeError("ERR Client sent AUTH, but no password is set. Did you mean AUTH <username> <password>?")
	}

	var username, password string
	switch len(cmd.Args) {
	case 2:
		username, password = "default", cmd.Args[1]
	case 3:
		username, password = cmd.Args[1], cmd.Args[2]
	default:
		return protocol.EncodeError("ERR wrong number of arguments for 'auth' command")
	}

	if !h.acl.Authenticate(username, password) {
		h.acl.RecordDenial("auth", "AUTH", username, username)
		return protocol.EncodeError("WRONGPASS invalid username-password pair or user is disabled.")
	}

	client.Username = username
	client.Authenticated = true
	return protocol.EncodeSimpleString("OK")
}

// handleACL implements the ACL command family: WHOAMI, SETUSER, GETUSER,
// DELUSER, LIST, CAT, LOG, LOG RESET.
func (h *CommandHandler) handleACL(cmd *protocol.Command, client *Client) []byte {
	if h.acl == nil {
		return protocol.EncodeError("ERR This server has no ACL manager configured")
	}
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'acl' command")
	}

	sub := strings.ToUpper(cmd.Args[1])
	switch sub {
	case "WHOAMI":
		return protocol.EncodeBulkString(client.Username)

	case "LIST":
		names := h.acl.ListUsers()
		lines := make([]string, len(names))
		for i, n := range names {
			lines[i] = "user " + n
		}
		return protocol.EncodeArray(lines)

	case "CAT":
		cats := []string{"read", "write", "keyspace", "dangerous", "admin", "connection", "pubsub", "transaction", "stream"}
		return protocol.EncodeArray(cats)

	case "DELUSER":
		if len(cmd.Args) < 3 {
			return protocol.EncodeError("ERR wrong number of arguments for 'acl|deluser' command")
		}
		deleted := 0
		for _, name := range cmd.Args[2:] {
			if h.acl.DeleteUser(name) {
				deleted++
			}
		}
		return protocol.EncodeInteger(deleted)

	case "SETUSER":
		if len(cmd.Args) < 3 {
			return protocol.EncodeError("ERR wrong number of arguments for 'acl|setuser' command")
		}
		if err := h.acl.SetUser(cmd.Args[2], cmd.Args[3:]); err != nil {
			return protocol.EncodeError(err.Error())
		}
		return protocol.EncodeSimpleString("OK")

	case "GETUSER":
		if len(cmd.Args) != 3 {
			return protocol.EncodeError("ERR wrong number of arguments for 'acl|getuser' command")
		}
		user, ok := h.acl.GetUser(cmd.Args[2])
		if !ok {
			return protocol.EncodeNilArray()
		}
		fields := []string{"flags", userFlags(user), "commands", commandsSummary(user), "keys", keysSummary(user), "channels", channelsSummary(user)}
		return protocol.EncodeArray(fields)

	case "LOG":
		if len(cmd.Args) >= 3 && strings.ToUpper(cmd.Args[2]) == "RESET" {
			h.acl.ResetLog()
			return protocol.EncodeSimpleString("OK")
		}
		entries := h.acl.Log()
		lines := make([]string, 0, len(entries)*2)
		for _, e := range entries {
			lines = append(lines, "reason", e.Reason, "username", e.Username, "object", e.Object)
		}
		return protocol.EncodeArray(lines)

	default:
		return protocol.EncodeError(fmt.Sprintf("ERR Unknown ACL subcommand or wrong number of arguments for '%s'", sub))
	}
}

func userFlags(user *acl.User) string {
	if user.Enabled {
		return "on"
	}
	return "off"
}

func commandsSummary(user *acl.User) string {
	if user.AllCommands {
		return "+@all"
	}
	if user.NoCommands {
		return "-@all"
	}
	return fmt.Sprintf("-@all (%d explicit rules)", len(user.AllowedCommands)+len(user.DeniedCommands))
}

func keysSummary(user *acl.User) string {
	if user.AllKeys {
		return "~*"
	}
	return fmt.Sprintf("%d pattern(s)", len(user.KeyPatterns))
}

func channelsSummary(user *acl.User) string {
	if user.AllChannels {
		return "&*"
	}
	return fmt.Sprintf("%d pattern(s)", len(user.ChannelPatterns))
}
