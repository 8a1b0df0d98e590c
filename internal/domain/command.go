package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

var (
	// ErrUnknownCommand возвращается для токена с неизвестным первым сегментом
	ErrUnknownCommand = errors.New("domain: unknown command token")

	// ErrMalformedCommand возвращается при неверном количестве или формате аргументов
	ErrMalformedCommand = errors.New("domain: malformed command token")
)

// CommandKind вид команды кнопки
type CommandKind string

const (
	CmdMainReserve CommandKind = "main_reserve"
	CmdMainArrive  CommandKind = "main_arrive"
	CmdMainModify  CommandKind = "main_modify"
	CmdMainCancel  CommandKind = "main_cancel"

	CmdReservePick CommandKind = "reserve_pick"
	CmdArrivePick  CommandKind = "arrive_pick"
	CmdModifyPick  CommandKind = "modify_pick"
	CmdModifyTo    CommandKind = "modify_to"
	CmdCancelPick  CommandKind = "cancel_pick"

	CmdCancelFlow CommandKind = "cancel_flow"
	CmdNoop       CommandKind = "noop"

	CmdStaffUp     CommandKind = "staff_up"
	CmdInputClient CommandKind = "input_client"
	CmdNotConsumed CommandKind = "not_consumed"
	CmdDouble      CommandKind = "double"
	CmdComplete    CommandKind = "complete"
	CmdFix         CommandKind = "fix"
)

// Command разобранный командный токен кнопки
// Токен разбирается один раз на границе транспорта; ядро сопоставляет Kind
type Command struct {
	Kind CommandKind

	SlotTime types.TimeString
	Name     string

	OldSlotTime types.TimeString
	OldName     string
	NewSlotTime types.TimeString

	BusinessChatID int64
}

// ParseCommand разбирает командный токен кнопки вида "kind|arg|arg|..."
func ParseCommand(token string) (Command, error) {
	parts := strings.Split(token, "|")
	head, args := parts[0], parts[1:]

	switch head {
	case "cancel_flow":
		return Command{Kind: CmdCancelFlow}, nil
	case "noop":
		return Command{Kind: CmdNoop}, nil

	case "main":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: main expects 1 argument", ErrMalformedCommand)
		}
		switch args[0] {
		case "reserve":
			return Command{Kind: CmdMainReserve}, nil
		case "arrive":
			return Command{Kind: CmdMainArrive}, nil
		case "modify":
			return Command{Kind: CmdMainModify}, nil
		case "cancel":
			return Command{Kind: CmdMainCancel}, nil
		}
		return Command{}, fmt.Errorf("%w: main section %q", ErrUnknownCommand, args[0])

	case "reserve_pick":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: reserve_pick expects 1 argument", ErrMalformedCommand)
		}
		slot, err := types.NewTimeStringFromString(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		return Command{Kind: CmdReservePick, SlotTime: slot}, nil

	case "arrive_pick", "modify_pick", "cancel_pick":
		if len(args) != 2 {
			return Command{}, fmt.Errorf("%w: %s expects 2 arguments", ErrMalformedCommand, head)
		}
		slot, err := types.NewTimeStringFromString(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		kind := map[string]CommandKind{
			"arrive_pick": CmdArrivePick,
			"modify_pick": CmdModifyPick,
			"cancel_pick": CmdCancelPick,
		}[head]
		return Command{Kind: kind, SlotTime: slot, Name: args[1]}, nil

	case "modify_to":
		if len(args) != 3 {
			return Command{}, fmt.Errorf("%w: modify_to expects 3 arguments", ErrMalformedCommand)
		}
		oldSlot, err := types.NewTimeStringFromString(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		newSlot, err := types.NewTimeStringFromString(args[2])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		return Command{Kind: CmdModifyTo, OldSlotTime: oldSlot, OldName: args[1], NewSlotTime: newSlot}, nil

	case "staff_up", "input_client", "not_consumed", "double", "complete", "fix":
		if len(args) != 3 {
			return Command{}, fmt.Errorf("%w: %s expects 3 arguments", ErrMalformedCommand, head)
		}
		slot, err := types.NewTimeStringFromString(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		chatID, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: bad chat id %q", ErrMalformedCommand, args[2])
		}
		kind := map[string]CommandKind{
			"staff_up":     CmdStaffUp,
			"input_client": CmdInputClient,
			"not_consumed": CmdNotConsumed,
			"double":       CmdDouble,
			"complete":     CmdComplete,
			"fix":          CmdFix,
		}[head]
		return Command{Kind: kind, SlotTime: slot, Name: args[1], BusinessChatID: chatID}, nil
	}

	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, head)
}

// Token собирает командный токен кнопки обратно в строку
func (c Command) Token() string {
	switch c.Kind {
	case CmdMainReserve:
		return "main|reserve"
	case CmdMainArrive:
		return "main|arrive"
	case CmdMainModify:
		return "main|modify"
	case CmdMainCancel:
		return "main|cancel"
	case CmdReservePick:
		return "reserve_pick|" + c.SlotTime.String()
	case CmdArrivePick:
		return "arrive_pick|" + c.SlotTime.String() + "|" + c.Name
	case CmdModifyPick:
		return "modify_pick|" + c.SlotTime.String() + "|" + c.Name
	case CmdModifyTo:
		return "modify_to|" + c.OldSlotTime.String() + "|" + c.OldName + "|" + c.NewSlotTime.String()
	case CmdCancelPick:
		return "cancel_pick|" + c.SlotTime.String() + "|" + c.Name
	case CmdCancelFlow:
		return "cancel_flow"
	case CmdNoop:
		return "noop"
	case CmdStaffUp, CmdInputClient, CmdNotConsumed, CmdDouble, CmdComplete, CmdFix:
		head := map[CommandKind]string{
			CmdStaffUp:     "staff_up",
			CmdInputClient: "input_client",
			CmdNotConsumed: "not_consumed",
			CmdDouble:      "double",
			CmdComplete:    "complete",
			CmdFix:         "fix",
		}[c.Kind]
		return head + "|" + c.SlotTime.String() + "|" + c.Name + "|" + strconv.FormatInt(c.BusinessChatID, 10)
	}
	return string(c.Kind)
}
