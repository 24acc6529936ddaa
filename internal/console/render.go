package console

import (
	"fmt"
	"io"

	"stufflending/internal/catalog"
	"stufflending/internal/ledger"
	"stufflending/internal/membership"
)

func writeItem(w io.Writer, item *catalog.Item) {
	status := "available"
	if !item.Available {
		status = "lent out"
	}
	fmt.Fprintf(w, "[%s] %s | %d credits/day | %s | %s | %s\n",
		item.ID, item.Name, item.CostPerDay, item.Description, item.Category, status)
}

func writeContract(w io.Writer, c ledger.Contract) {
	fmt.Fprintf(w, "Contract %s\n  Item: %s\n  From %s to %s\n  Lender: %s\n  Borrower: %s\n",
		c.ID, c.ItemName, c.StartDate, c.EndDate, c.Lender.Username, c.Borrower.Username)
}

func writeMemberSimple(w io.Writer, m *membership.Member) {
	fmt.Fprintf(w, "%s | %s | %d credits | %d items\n", m.Username(), m.Email(), m.Credits(), m.NumberOfItems())
}

func writeMemberVerbose(w io.Writer, m *membership.Member) {
	fmt.Fprintf(w, "%s | %s | %d credits\n", m.Username(), m.Email(), m.Credits())
	for _, item := range m.OwnedItems() {
		fmt.Fprint(w, "  ")
		writeItem(w, item)
	}
}
