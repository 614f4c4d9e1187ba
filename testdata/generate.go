//go:build ignore

package main

import (
	"log"

	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name string
	rows [][]interface{}
}

func main() {
	sheets := []sheet{
		{
			name: "Failure Details",
			rows: [][]interface{}{
				{"Date Sent", "User", "To Domain", "Detail Category", "SMTP Code", "Server", "Details"},
				{"2024-03-01 08:12:00", "alice", "example.com", "Mailbox full", 552, "mx1", "quota exceeded"},
				{"2024-03-01 09:40:00", "bob", "example.com", "Spam", 550, "mx1", "message rejected as spam"},
				{"2024-03-01 13:05:00", "carol", "mail.test", "Unknown user", 550, "mx2", "no such user"},
				{"2024-03-02 10:22:00", "alice", "example.com", "Spam", 550, "mx2", "blocked by policy"},
				{"2024-03-02 16:48:00", "diana", "corp.example", "Timeout", 421, "mx1", "try again later"},
				{"2024-03-03 07:30:00", "bob", "mail.test", "Mailbox full", 552, "mx3", "over quota"},
			},
		},
		{
			name: "Domains w Lower Deliverability",
			rows: [][]interface{}{
				{"Domain", "Recipients", "Delivered", "Success Rate %"},
				{"example.com", 1200, 1020, 85.0},
				{"mail.test", 300, 210, 70.0},
				{"corp.example", 90, 81, 90.0},
			},
		},
		{
			name: "Failure Reasons",
			rows: [][]interface{}{
				{"Row Labels", "Count"},
				{"Mailbox full", 2},
				{"Spam", 2},
				{"Timeout", 1},
				{"Unknown user", 1},
				{"Grand Total", 6},
			},
		},
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				log.Fatal(err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			log.Fatal(err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				log.Fatal(err)
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				log.Fatal(err)
			}
		}
	}

	if err := f.SaveAs("deliverability.xlsx"); err != nil {
		log.Fatal(err)
	}

	log.Println("Generated deliverability.xlsx with 3 sheets")
}
