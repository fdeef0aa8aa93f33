package service

import "github.com/google/uuid"

const ticketTypeIDPrefix = "tkt-"

func newTicketTypeID() string {
	return ticketTypeIDPrefix + uuid.NewString()
}
