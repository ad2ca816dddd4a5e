package mongostore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eventhub/backend/internal/domain/planning"
)

// eventDocument mirrors a document of the events collection
type eventDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Date      time.Time          `bson:"date"`
	Category  primitive.ObjectID `bson:"category,omitempty"`
	Location  string             `bson:"location"`
	Services  []eventServiceRef  `bson:"services"`
	CreatedAt time.Time          `bson:"createdAt"`
	IsPublic  bool               `bson:"isPublic"`
	CreatedBy primitive.ObjectID `bson:"createdBy"`
}

type eventServiceRef struct {
	Service  primitive.ObjectID `bson:"service"`
	Quantity int                `bson:"quantity"`
}

func (d *eventDocument) toDomain() *planning.Event {
	event := &planning.Event{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Date:      d.Date,
		Location:  d.Location,
		IsPublic:  d.IsPublic,
		CreatedAt: d.CreatedAt,
		Services:  make([]planning.ServiceLine, len(d.Services)),
	}
	if !d.Category.IsZero() {
		event.CategoryID = d.Category.Hex()
	}
	if !d.CreatedBy.IsZero() {
		event.CreatedBy = d.CreatedBy.Hex()
	}
	for i, ref := range d.Services {
		event.Services[i] = planning.ServiceLine{ServiceID: ref.Service.Hex(), Quantity: ref.Quantity}
	}
	return event
}

// serviceDocument mirrors a document of the services collection.
// Price is kept raw because older documents store it as a double and newer ones as Decimal128.
type serviceDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       bson.RawValue      `bson:"price"`
}

func (d *serviceDocument) toDomain() (*planning.CatalogService, error) {
	price, err := decimalFromRaw(d.Price)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", d.ID.Hex(), err)
	}
	return &planning.CatalogService{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
	}, nil
}

// decimalFromRaw converts a numeric BSON value to a decimal without going through float formatting twice
func decimalFromRaw(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bsontype.Decimal128:
		d128, ok := v.Decimal128OK()
		if !ok {
			return decimal.Zero, fmt.Errorf("malformed decimal128 price")
		}
		return decimal.NewFromString(d128.String())
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	case bsontype.String:
		return decimal.NewFromString(v.StringValue())
	case bsontype.Null, bsontype.Undefined, 0:
		return decimal.Zero, fmt.Errorf("price is missing")
	default:
		return decimal.Zero, fmt.Errorf("unsupported price type %s", strconv.Quote(v.Type.String()))
	}
}
