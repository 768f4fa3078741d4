package testutil

import (
	"github.com/hlop3z/erdpad/internal/diagram"
)

// Ids used by OrdersCustomers.
const (
	CustomersID   = "table_1"
	CustomersPK   = "col_1"
	CustomersMail = "col_2"
	OrdersID      = "table_2"
	OrdersPK      = "col_3"
	OrdersFK      = "col_4"
	OrdersRelID   = "rel_1"
)

// OrdersCustomers returns a two-table graph: Customers(Id, Email) at (100,100)
// and Orders(Id, CustomerId -> Customers.Id) at (400,160), with the inferred
// many-to-one relationship already present.
func OrdersCustomers() diagram.Graph {
	return diagram.Graph{
		Tables: []diagram.Table{
			{
				ID:       CustomersID,
				Name:     "Customers",
				Position: diagram.Point{X: 100, Y: 100},
				Columns: []diagram.Column{
					{ID: CustomersPK, Name: "Id", DataType: diagram.TypeInt, IsPrimaryKey: true, IsAutoIncrement: true},
					{ID: CustomersMail, Name: "Email", DataType: diagram.TypeVarcharLong},
				},
			},
			{
				ID:       OrdersID,
				Name:     "Orders",
				Position: diagram.Point{X: 400, Y: 160},
				Columns: []diagram.Column{
					{ID: OrdersPK, Name: "Id", DataType: diagram.TypeInt, IsPrimaryKey: true},
					{ID: OrdersFK, Name: "CustomerId", DataType: diagram.TypeInt, IsForeignKey: true, ForeignKeyReference: "Customers.Id"},
				},
			},
		},
		Relationships: []diagram.Relationship{
			{
				ID:           OrdersRelID,
				FromTableID:  OrdersID,
				FromColumnID: OrdersFK,
				ToTableID:    CustomersID,
				ToColumnID:   CustomersPK,
				Cardinality:  diagram.ManyToOne,
				Direction:    diagram.Unidirectional,
			},
		},
	}
}

// OrdersCustomersJSON is OrdersCustomers in the document format, as the
// codec writes it.
const OrdersCustomersJSON = `{
  "tables": [
    {
      "id": "table_1",
      "name": "Customers",
      "x": 100,
      "y": 100,
      "columns": [
        {
          "id": "col_1",
          "name": "Id",
          "type": "int",
          "isPrimaryKey": true,
          "isForeignKey": false,
          "isAutoIncrement": true
        },
        {
          "id": "col_2",
          "name": "Email",
          "type": "varchar(255)",
          "isPrimaryKey": false,
          "isForeignKey": false
        }
      ]
    },
    {
      "id": "table_2",
      "name": "Orders",
      "x": 400,
      "y": 160,
      "columns": [
        {
          "id": "col_3",
          "name": "Id",
          "type": "int",
          "isPrimaryKey": true,
          "isForeignKey": false
        },
        {
          "id": "col_4",
          "name": "CustomerId",
          "type": "int",
          "isPrimaryKey": false,
          "isForeignKey": true,
          "foreignKeyReference": "Customers.Id"
        }
      ]
    }
  ],
  "relationships": [
    {
      "id": "rel_1",
      "fromTableId": "table_2",
      "fromColumnId": "col_4",
      "toTableId": "table_1",
      "toColumnId": "col_1",
      "relationshipType": "many-to-one",
      "direction": "unidirectional"
    }
  ]
}`
