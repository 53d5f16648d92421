package graphql

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/jpalomar/vendorhub/internal/store"
)

// dateScalar carries timestamps as RFC3339 strings.
var dateScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Date",
	Description: "An RFC3339 timestamp.",
	Serialize: func(value interface{}) interface{} {
		switch t := value.(type) {
		case time.Time:
			return t.Format(time.RFC3339)
		case *time.Time:
			if t == nil {
				return nil
			}
			return t.Format(time.RFC3339)
		}
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil
		}
		return t
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		s, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		t, err := time.Parse(time.RFC3339, s.Value)
		if err != nil {
			return nil
		}
		return t
	},
})

// The enum values are typed store.OrderState so DTO fields serialize
// without conversion and resolver arguments arrive already typed.
var orderStateEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "OrderState",
	Values: graphql.EnumValueConfigMap{
		"PENDING":   &graphql.EnumValueConfig{Value: store.StatePending},
		"COMPLETED": &graphql.EnumValueConfig{Value: store.StateCompleted},
		"CANCELLED": &graphql.EnumValueConfig{Value: store.StateCancelled},
	},
})

var tokenType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Token",
	Fields: graphql.Fields{
		"token": &graphql.Field{Type: graphql.String},
	},
})

var vendorType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Vendor",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.ID},
		"name":      &graphql.Field{Type: graphql.String},
		"last_name": &graphql.Field{Type: graphql.String},
		"email":     &graphql.Field{Type: graphql.String},
		"creation":  &graphql.Field{Type: dateScalar},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.ID},
		"name":     &graphql.Field{Type: graphql.String},
		"amount":   &graphql.Field{Type: graphql.Int},
		"price":    &graphql.Field{Type: graphql.Float},
		"creation": &graphql.Field{Type: dateScalar},
	},
})

var clientType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Client",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.ID},
		"name":      &graphql.Field{Type: graphql.String},
		"last_name": &graphql.Field{Type: graphql.String},
		"company":   &graphql.Field{Type: graphql.String},
		"address":   &graphql.Field{Type: graphql.String},
		"email":     &graphql.Field{Type: graphql.String},
		"phone":     &graphql.Field{Type: graphql.String},
		"vendor":    &graphql.Field{Type: graphql.ID},
		"creation":  &graphql.Field{Type: dateScalar},
	},
})

// productOrderType is an order line item: the product id and the amount
// ordered.
var productOrderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductOrder",
	Fields: graphql.Fields{
		"id":     &graphql.Field{Type: graphql.ID},
		"amount": &graphql.Field{Type: graphql.Int},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.ID},
		"items":    &graphql.Field{Type: graphql.NewList(productOrderType)},
		"total":    &graphql.Field{Type: graphql.Float},
		"client":   &graphql.Field{Type: clientType},
		"vendor":   &graphql.Field{Type: graphql.ID},
		"state":    &graphql.Field{Type: orderStateEnum},
		"deadline": &graphql.Field{Type: dateScalar},
		"creation": &graphql.Field{Type: dateScalar},
	},
})

var topVendorType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TopVendor",
	Fields: graphql.Fields{
		"totalSold": &graphql.Field{Type: graphql.Float},
		"vendor":    &graphql.Field{Type: graphql.NewList(vendorType)},
	},
})

var topClientType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TopClient",
	Fields: graphql.Fields{
		"totalBought": &graphql.Field{Type: graphql.Float},
		"client":      &graphql.Field{Type: graphql.NewList(clientType)},
	},
})

var vendorInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "VendorInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"last_name": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var authInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "AuthInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var productInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"amount": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"price":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var clientInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ClientInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"last_name": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"company":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"address":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"phone":     &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var productOrderInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductOrderInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"id":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"amount": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var orderInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "OrderInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"items":    &graphql.InputObjectFieldConfig{Type: graphql.NewList(productOrderInput)},
		"client":   &graphql.InputObjectFieldConfig{Type: graphql.ID},
		"state":    &graphql.InputObjectFieldConfig{Type: orderStateEnum},
		"deadline": &graphql.InputObjectFieldConfig{Type: dateScalar},
	},
})
