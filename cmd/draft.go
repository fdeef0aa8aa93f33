package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/eventmaster/internal/service"
)

// draftFile is an event form written as YAML:
//
//	name: Go Meetup
//	date: "2026-12-01"
//	time: "18:00"
//	location: Library
//	description: Monthly meetup
//	ticket_types:
//	  - name: General
//	    price: 12.50
//	    capacity: 40
//
// Numbers are read as text and parsed the way the interactive form parses
// them. Empty fields leave the form untouched. Ticket type rows are matched
// by position.
type draftFile struct {
	Name        string        `yaml:"name"`
	Date        string        `yaml:"date"`
	Time        string        `yaml:"time"`
	Location    string        `yaml:"location"`
	Description string        `yaml:"description"`
	TicketTypes []draftTicket `yaml:"ticket_types"`
}

type draftTicket struct {
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Capacity string `yaml:"capacity"`
	Sold     string `yaml:"sold"`
}

func readDraft(path string) (draftFile, error) {
	var d draftFile
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read draft: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&d); err != nil {
		return d, fmt.Errorf("parse draft %s: %w", path, err)
	}
	return d, nil
}

// apply copies the draft onto the editor's open form.
func (d draftFile) apply(e *service.EventEditor) error {
	fields := []struct{ name, value string }{
		{service.FieldName, d.Name},
		{service.FieldDate, d.Date},
		{service.FieldTime, d.Time},
		{service.FieldLocation, d.Location},
		{service.FieldDescription, d.Description},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := e.SetField(f.name, f.value); err != nil {
			return err
		}
	}

	if len(d.TicketTypes) == 0 {
		return nil
	}
	current, _ := e.Draft()
	for n := len(current.TicketTypes); n < len(d.TicketTypes); n++ {
		if err := e.AddTicketType(); err != nil {
			return err
		}
	}
	for n := len(current.TicketTypes); n > len(d.TicketTypes); n-- {
		if err := e.RemoveTicketType(n - 1); err != nil {
			return err
		}
	}

	for i, tt := range d.TicketTypes {
		cells := []struct{ field, value string }{
			{service.TicketFieldName, tt.Name},
			{service.TicketFieldPrice, tt.Price},
			{service.TicketFieldCapacity, tt.Capacity},
			{service.TicketFieldSold, tt.Sold},
		}
		for _, c := range cells {
			if c.value == "" {
				continue
			}
			if err := e.SetTicketField(i, c.field, c.value); err != nil {
				return fmt.Errorf("ticket type %d: %w", i+1, err)
			}
		}
	}
	return nil
}
