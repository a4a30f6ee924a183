package models

import "github.com/homechef/backend/internal/domain/shared/valueobject"

// AddressColumns is an embedded address with its geocoded point
type AddressColumns struct {
	Line1        string  `gorm:"type:varchar(200)"`
	Line2        string  `gorm:"type:varchar(200)"`
	City         string  `gorm:"type:varchar(100)"`
	PostalCode   string  `gorm:"type:varchar(20)"`
	Instructions string  `gorm:"type:varchar(500)"`
	Lat          float64 `gorm:"type:double precision"`
	Lng          float64 `gorm:"type:double precision"`
}

// ToDomain converts the columns to an address
func (c AddressColumns) ToDomain() valueobject.Address {
	return valueobject.Address{
		Line1:        c.Line1,
		Line2:        c.Line2,
		City:         c.City,
		PostalCode:   c.PostalCode,
		Instructions: c.Instructions,
		Location:     valueobject.Point{Lat: c.Lat, Lng: c.Lng},
	}
}

// AddressColumnsFromDomain flattens an address
func AddressColumnsFromDomain(a valueobject.Address) AddressColumns {
	return AddressColumns{
		Line1:        a.Line1,
		Line2:        a.Line2,
		City:         a.City,
		PostalCode:   a.PostalCode,
		Instructions: a.Instructions,
		Lat:          a.Location.Lat,
		Lng:          a.Location.Lng,
	}
}
