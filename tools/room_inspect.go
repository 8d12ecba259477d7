package main

import (
	"cmp"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"room-engine/domain"
	"room-engine/repositories"
	"slices"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/rooms"`
	Colours        bool   `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("Error while reading config: ", err)
	}
	dbPath := flag.String("db", cfg.BadgerFilepath, "Path to badger DB")
	roomKey := flag.String("room", "", "Show the leaderboard of one room")
	contestID := flag.String("contest", "", "Show the stages and standings of one contest")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	logger := logs.GetLoggerFromLevel(slog.LevelWarn)
	rooms := repositories.NewRoomRepository(db, logger)
	contests := repositories.NewContestRepository(db, logger)
	paint := painter(cfg.Colours)

	switch {
	case *roomKey != "":
		err = showRoom(rooms, domain.RoomKey(*roomKey), paint)
	case *contestID != "":
		err = showContest(contests, *contestID, paint)
	default:
		err = listRooms(rooms, paint)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func listRooms(rooms repositories.RoomRepository, paint func(domain.RoomStatus, string) string) error {
	active, err := rooms.LoadActiveRooms()
	if err != nil {
		return err
	}
	table := newTable("Key", "Kind", "Status", "Item", "Deadline", "Expires", "Host")
	for _, room := range active {
		deadline := "-"
		if room.Deadline != nil {
			deadline = room.Deadline.Format("15:04:05")
		}
		table.Append([]string{
			string(room.Key),
			string(room.Kind),
			paint(room.Status, string(room.Status)),
			fmt.Sprintf("%d/%d", room.ActiveIndex+1, len(room.Items)),
			deadline,
			room.ExpiresAt.Format("2006-01-02 15:04"),
			room.HostID,
		})
	}
	table.Render()
	return nil
}

func showRoom(rooms repositories.RoomRepository, key domain.RoomKey, paint func(domain.RoomStatus, string) string) error {
	room, err := rooms.GetRoom(key)
	if err != nil {
		return err
	}
	entrants, err := rooms.ListEntrants(key)
	if err != nil {
		return err
	}
	slices.SortStableFunc(entrants, func(a, b domain.Entrant) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return a.JoinedAt.Compare(b.JoinedAt)
	})

	fmt.Printf("%s %s %s\n", room.Key, room.Kind, paint(room.Status, string(room.Status)))
	table := newTable("Rank", "Nickname", "User", "Score", "Last item")
	for i, e := range entrants {
		table.Append([]string{
			strconv.Itoa(i + 1),
			e.Nickname,
			e.UserID,
			strconv.FormatInt(e.Score, 10),
			strconv.Itoa(e.LastScoredItem + 1),
		})
	}
	table.Render()
	return nil
}

func showContest(contests repositories.ContestRepository, id string, paint func(domain.RoomStatus, string) string) error {
	contest, err := contests.GetContest(id)
	if err != nil {
		return err
	}
	stages, err := contests.ListStages(id)
	if err != nil {
		return err
	}
	participants, err := contests.ListParticipants(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s) organized by %s\n", contest.Name, contest.Status, contest.OrganizerID)
	table := newTable("Position", "Stage", "Kind", "Status", "Weight")
	for _, st := range stages {
		status := string(st.Status)
		if st.ID == contest.CurrentStageID {
			status = paint(domain.ItemActive, status)
		}
		weight := "-"
		if st.Settings != nil {
			weight = strconv.FormatFloat(st.Settings.StageWeight(), 'f', 2, 64)
		}
		table.Append([]string{strconv.Itoa(st.Position), st.Name, string(st.Kind), status, weight})
	}
	table.Render()

	slices.SortStableFunc(participants, func(a, b domain.ContestParticipant) int {
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})
	standings := newTable("User", "Name", "Roles", "Total")
	for _, p := range participants {
		roles := make([]string, 0, len(p.Roles))
		for _, r := range p.Roles {
			roles = append(roles, string(r))
		}
		standings.Append([]string{p.UserID, p.DisplayName, strings.Join(roles, ","), strconv.FormatFloat(p.TotalScore, 'f', 2, 64)})
	}
	standings.Render()
	return nil
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func painter(enabled bool) func(domain.RoomStatus, string) string {
	return func(status domain.RoomStatus, text string) string {
		if !enabled {
			return text
		}
		switch status {
		case domain.Waiting:
			return color.FgYellow.Render(text)
		case domain.ItemActive:
			return color.FgGreen.Render(text)
		case domain.ItemFinished:
			return color.FgCyan.Render(text)
		case domain.Closed:
			return color.FgRed.Render(text)
		default:
			return color.FgGray.Render(text)
		}
	}
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
