package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mrlokans/bookswap/internal/client"
	"github.com/mrlokans/bookswap/internal/entities"
)

const previewLength = 40

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RenderBooks prints the session's current listing page.
func RenderBooks(w io.Writer, s *client.Session) error {
	books := s.Books()
	if len(books) == 0 {
		_, err := fmt.Fprintln(w, "No books match the current filter.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tSUBJECT\tCONDITION\tPRICE\tEXCHANGE\tSTATUS\tSELLER")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Author, b.Subject, b.Condition,
			formatPrice(b.Price), yesNo(b.IsExchangeable), b.Status,
			b.SellerFirstName+" "+b.SellerLastName)
	}
	return tw.Flush()
}

// RenderConversations prints one row per book and counterpart, newest first.
func RenderConversations(w io.Writer, s *client.Session) error {
	convs := s.Conversations()
	if len(convs) == 0 {
		_, err := fmt.Fprintln(w, "No conversations yet.")
		return err
	}

	me := s.UserID()
	tw := newTable(w)
	fmt.Fprintln(tw, "BOOK\tWITH\tLAST MESSAGE\tWHEN\tBOOK ID\tUSER ID")
	for _, c := range convs {
		last := preview(c.LastMessage)
		if c.LastSenderID == me {
			last = "you: " + last
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.BookTitle, c.FirstName+" "+c.LastName, last,
			formatTime(c.LastMessageTime), c.BookID, c.OtherUserID)
	}
	return tw.Flush()
}

// RenderThread prints the open thread in chronological order.
func RenderThread(w io.Writer, s *client.Session) error {
	thread := s.Thread()
	if thread == nil {
		_, err := fmt.Fprintln(w, "No conversation is open.")
		return err
	}
	if len(thread.Messages) == 0 {
		_, err := fmt.Fprintf(w, "No messages about book %s yet.\n", thread.BookID)
		return err
	}

	me := s.UserID()
	tw := newTable(w)
	for _, m := range thread.Messages {
		from := m.SenderFirstName + " " + m.SenderLastName
		if m.SenderID == me {
			from = "you"
		}
		fmt.Fprintf(tw, "[%s]\t%s:\t%s\n", formatTime(m.CreatedAt), from, m.Content)
	}
	return tw.Flush()
}

// RenderTransactions prints the caller's purchase and exchange requests.
func RenderTransactions(w io.Writer, me string, txs []entities.TransactionView) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, "No transactions.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tBOOK\tTYPE\tROLE\tSTATUS\tUPDATED")
	for _, t := range txs {
		role := "buyer"
		if t.SellerID == me {
			role = "seller"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.BookTitle, t.Type, role, t.Status, formatTime(t.UpdatedAt))
	}
	return tw.Flush()
}

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength-3]) + "..."
}
