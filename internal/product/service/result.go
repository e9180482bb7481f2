package service

import (
	"fmt"

	"github.com/SUMI3747/ProductManagementApi/internal/product/store"
)

// Status is the outcome kind of a product operation.
type Status string

const (
	StatusCreated           Status = "Created"
	StatusAlreadyExists     Status = "AlreadyExists"
	StatusUpdated           Status = "Updated"
	StatusNotFound          Status = "NotFound"
	StatusInsufficientStock Status = "InsufficientStock"
	StatusDeleted           Status = "Deleted"
	StatusInvalidArgument   Status = "InvalidArgument"
	StatusError             Status = "Error"
)

const (
	MsgCreated           = "New Product Added successfully."
	MsgAlreadyExists     = "Product Already Exist, Please Update Stock Quantity Only"
	MsgUpdated           = "Product updated successfully"
	MsgNotFound          = "Product not found"
	MsgInsufficientStock = "Insufficient stock available. Please select a quantity within the available stock."
	MsgDecremented       = "Stock decremented successfully"
	MsgIncremented       = "Stock Incremented successfully"
	MsgInvalidQuantity   = "Quantity must be greater than 0."
	MsgInvalidBody       = "Invalid Body Data please Check"
	MsgNoProducts        = "No products found."
)

// MsgDeleted returns the confirmation message for a deleted product.
func MsgDeleted(id string) string {
	return fmt.Sprintf("Product with ID %s deleted successfully.", id)
}

// MsgProductIDNotFound returns the not-found message used by read and delete endpoints.
func MsgProductIDNotFound(id string) string {
	return fmt.Sprintf("Product with ID %s not found.", id)
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID    string `json:"productID"`
	Name  string `json:"productName"`
	Stock int32  `json:"stockAvailable"`
}

// ProductCreateDto is the body of a create request.
type ProductCreateDto struct {
	Name  string `json:"productName" validate:"required,max=200"`
	Stock int32  `json:"stockAvailable" validate:"gt=0"`
}

// ProductUpdateDto is the body of an update request.
// A blank Name keeps the current name. StockDelta is added to the current stock; it never replaces it.
type ProductUpdateDto struct {
	Name       string `json:"productName" validate:"max=200"`
	StockDelta int32  `json:"stockAvailable"`
}

// Result is the typed outcome of a mutating operation.
// Product is nil for NotFound, Deleted, InvalidArgument and Error.
type Result struct {
	Status  Status      `json:"-"`
	Message string      `json:"message"`
	Product *ProductDto `json:"product,omitempty"`
	Err     error       `json:"-"`
}

func newResult(status Status, message string, p *store.Product) Result {
	return Result{Status: status, Message: message, Product: toDto(p)}
}

func errorResult(err error) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf("An error occurred: %s", err.Error()), Err: err}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	if product == nil {
		return nil
	}
	return &ProductDto{
		ID:    product.ID,
		Name:  product.Name,
		Stock: product.Stock,
	}
}
