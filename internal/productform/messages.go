package productform

const (
	MsgProductNotFound = "Product not found"
	MsgInvalidForm     = "Please fill in the form correctly"
	MsgProductAdded    = "Product added successfully"
	MsgProductUpdated  = "Product updated successfully"
	MsgProductDeleted  = "Product deleted successfully"
	MsgAddFailed       = "Failed to add product"
	MsgUpdateFailed    = "Failed to update product"
	MsgDeleteFailed    = "Failed to delete product"
	MsgConfirmDelete   = "Are you sure you want to delete this product?"
)
