package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type InvoiceData struct {
	SiteName      string
	ContactEmail  string
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	Status        string

	CustomerName    string
	CustomerEmail   string
	CustomerAddress string

	Items []LineItem

	Currency    string
	TotalAmount string
	Tax         string
	FinalAmount string
}

type LineItem struct {
	ParcelNo    string
	Description string
	Cost        string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.SiteName, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Invoice "+data.InvoiceNumber, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Date of issue: "+data.IssueDate, props.Text{Top: 0}),
			text.New("Date due: "+data.DueDate, props.Text{Top: 4}),
			text.New("Status: "+data.Status, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Billed to", props.Text{Style: fontstyle.Bold}),
			text.New(data.CustomerName, props.Text{Top: 5}),
			text.New(data.CustomerAddress, props.Text{Top: 9}),
			text.New(data.CustomerEmail, props.Text{Top: 13}),
		),
	)

	m.AddRow(10,
		text.NewCol(3, "Parcel", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Cost", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(8,
			text.NewCol(3, item.ParcelNo, props.Text{Size: 9}),
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(3, item.Cost, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Total", props.Text{Size: 9}),
		text.NewCol(2, data.TotalAmount, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Tax", props.Text{Size: 9}),
		text.NewCol(2, data.Tax, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Amount due ("+data.Currency+")", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.FinalAmount, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	m.AddRow(15,
		text.NewCol(12, "Questions? Contact "+data.ContactEmail, props.Text{Size: 8, Top: 5}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
