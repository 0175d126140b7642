package models

import "time"

// Product is an item a vendor pays for (a subscription, a license, a piece of hardware).
type Product struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VendorID       string    `json:"vendor_id" gorm:"index;type:varchar(64);not null"`
	ProductName    string    `json:"product_name" gorm:"type:varchar(255)"`
	Department     string    `json:"department" gorm:"type:varchar(255)"`
	BudgetOwner    string    `json:"budget_owner" gorm:"type:varchar(255)"`
	ProductOwner   string    `json:"product_owner" gorm:"type:varchar(255)"`
	ExpirationDate Date      `json:"expiration_date"`
	PaymentMethod  string    `json:"payment_method" gorm:"type:varchar(100)"`
	ProductType    string    `json:"product_type" gorm:"type:varchar(100)"`
	Status         string    `json:"status" gorm:"type:varchar(50)"`
	UserBy         string    `json:"user_by" gorm:"type:varchar(255)"`
	CreateDate     time.Time `json:"create_date" gorm:"autoCreateTime"`
	UpdatedDate    time.Time `json:"updated_date" gorm:"autoUpdateTime"`
}

// ProductPatch is a sparse update of a Product. ID and VendorID address the record;
// nil fields were absent from the request and must be left untouched.
type ProductPatch struct {
	ID             string
	VendorID       string
	ProductName    *string
	Department     *string
	BudgetOwner    *string
	ProductOwner   *string
	ExpirationDate *Date
	PaymentMethod  *string
	ProductType    *string
	Status         *string
	UserBy         *string
}

// Apply copies the present fields of the patch onto p.
func (patch ProductPatch) Apply(p *Product) {
	setString(&p.ProductName, patch.ProductName)
	setString(&p.Department, patch.Department)
	setString(&p.BudgetOwner, patch.BudgetOwner)
	setString(&p.ProductOwner, patch.ProductOwner)
	setString(&p.PaymentMethod, patch.PaymentMethod)
	setString(&p.ProductType, patch.ProductType)
	setString(&p.Status, patch.Status)
	setString(&p.UserBy, patch.UserBy)
	if patch.ExpirationDate != nil {
		p.ExpirationDate = *patch.ExpirationDate
	}
}

// Columns returns the present fields keyed by database column.
func (patch ProductPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	addString(cols, "product_name", patch.ProductName)
	addString(cols, "department", patch.Department)
	addString(cols, "budget_owner", patch.BudgetOwner)
	addString(cols, "product_owner", patch.ProductOwner)
	addString(cols, "payment_method", patch.PaymentMethod)
	addString(cols, "product_type", patch.ProductType)
	addString(cols, "status", patch.Status)
	addString(cols, "user_by", patch.UserBy)
	if patch.ExpirationDate != nil {
		cols["expiration_date"] = *patch.ExpirationDate
	}
	return cols
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func addString(cols map[string]interface{}, column string, v *string) {
	if v != nil {
		cols[column] = *v
	}
}
