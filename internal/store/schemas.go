package store

var farmerSchema = Schema{
	Kind:  "farmer",
	Table: "farmers",
	Event: "farmer",
	Fields: map[string]Field{
		"name":         {Column: "name", Required: true},
		"region":       {Column: "region"},
		"crop":         {Column: "crop"},
		"phone":        {Column: "phone"},
		"email":        {Column: "email"},
		"landSize":     {Column: "land_size"},
		"plantingDate": {Column: "planting_date"},
		"harvestDate":  {Column: "harvest_date"},
		"riskLevel":    {Column: "risk_level", Default: "low"},
		"healthScore":  {Column: "health_score"},
		"agronomistId": {Column: "agronomist_id", Int: true},
	},
}

var aggregatorSchema = Schema{
	Kind:  "aggregator",
	Table: "aggregators",
	Event: "aggregator",
	Fields: map[string]Field{
		"name":             {Column: "name", Required: true},
		"region":           {Column: "region"},
		"type":             {Column: "type", Default: "external"},
		"historicalVolume": {Column: "historical_volume"},
		"reliabilityScore": {Column: "reliability_score"},
		"qualityScore":     {Column: "quality_score"},
	},
}

var cropSchema = Schema{
	Kind:  "crop",
	Table: "crops",
	Event: "crop",
	Fields: map[string]Field{
		"name":     {Column: "name", Required: true},
		"variety":  {Column: "variety"},
		"season":   {Column: "season"},
		"metadata": {Column: "metadata", JSON: true},
	},
}

var orderSchema = Schema{
	Kind:  "order",
	Table: "orders",
	Event: "order",
	Fields: map[string]Field{
		"supplierName":     {Column: "supplier_name", Required: true},
		"source":           {Column: "source", Default: "farmer"},
		"crop":             {Column: "crop"},
		"quantityOrdered":  {Column: "quantity_ordered"},
		"quantityAccepted": {Column: "quantity_accepted"},
		"quantityRejected": {Column: "quantity_rejected"},
		"rejectionReason":  {Column: "rejection_reason"},
		"unitPrice":        {Column: "unit_price"},
		"status":           {Column: "status", Default: "pending"},
		"paymentStatus":    {Column: "payment_status", Default: "unpaid"},
		"expectedDelivery": {Column: "expected_delivery"},
	},
}

var contractSchema = Schema{
	Kind:  "contract",
	Table: "contracts",
	Event: "contract",
	Fields: map[string]Field{
		"supplierName":       {Column: "supplier_name", Required: true},
		"supplierType":       {Column: "supplier_type", Default: "farmer"},
		"contractedQuantity": {Column: "contracted_quantity"},
		"fulfillmentPercent": {Column: "fulfillment_percent"},
		"startDate":          {Column: "start_date"},
		"endDate":            {Column: "end_date"},
		"status":             {Column: "status", Default: "draft"},
		"pricePerUnit":       {Column: "price_per_unit"},
		"paymentTerms":       {Column: "payment_terms"},
	},
}

var allocationSchema = Schema{
	Kind:  "allocation",
	Table: "supply_allocations",
	Event: "allocation",
	Fields: map[string]Field{
		// farmerId is a soft reference; resolution is checked by the
		// risk-alert pass, never at write time.
		"farmerId": {Column: "farmer_id", Required: true, Int: true},
		"quantity": {Column: "quantity"},
		"date":     {Column: "date"},
		"status":   {Column: "status", Default: "scheduled"},
	},
}

var notificationSchema = Schema{
	Kind:  "notification",
	Table: "notifications",
	Event: "notification",
	Fields: map[string]Field{
		"message": {Column: "message", Required: true},
		"level":   {Column: "level", Default: "info"},
		"read":    {Column: "read"},
	},
}
