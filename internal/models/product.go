package models

import "time"

// Product is an item registered by a user. ProductName is unique per owner.
type Product struct {
	ID                 uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID             uint      `json:"userId" gorm:"column:user_id;not null;uniqueIndex:idx_products_name_user,priority:2;<-:create"`
	ProductName        string    `json:"productName" gorm:"type:varchar(100);not null;uniqueIndex:idx_products_name_user,priority:1"`
	DescriptionProduct string    `json:"descriptionProduct" gorm:"type:text;not null"`
	CategoryProduct    string    `json:"categoryProduct" gorm:"type:varchar(50);not null;index"`
	QuantityProduct    int       `json:"quantityProduct" gorm:"not null"`
	PriceProduct       float64   `json:"priceProduct" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt          time.Time `json:"createdAt" gorm:"index;<-:create"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}
