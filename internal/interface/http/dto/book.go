package dto

import "github.com/shopspring/decimal"

// PublishBookRequest HTTP上架请求
// 价格接受JSON数字或字符串,按两位小数四舍五入入库
type PublishBookRequest struct {
	ISBN        string          `json:"isbn" binding:"required" example:"9787115428028"`
	Title       string          `json:"title" binding:"required,max=255" example:"Go语言实战"`
	Author      string          `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Description string          `json:"description" binding:"max=5000" example:"这是一本关于Go语言的实战书籍"`
	Price       decimal.Decimal `json:"price" binding:"required" swaggertype:"string" example:"59.00"`
	Category    string          `json:"category" binding:"required" example:"ACADEMIC"`
	Stock       int             `json:"stock" binding:"min=0" example:"100"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	Category string `form:"category" binding:"omitempty,max=32" example:"ACADEMIC"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc created_at_desc" example:"created_at_desc"`
}
