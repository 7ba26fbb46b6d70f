package eticos

// Envelope sobre de respuesta del backend Eticos
type Envelope[T any] struct {
	Success bool    `json:"success"`
	Data    *T      `json:"data"`
	Error   *string `json:"error"`
}

// AuthData datos de autenticación devueltos por /login
type AuthData struct {
	IDUser   int      `json:"iduser"`
	Main     []string `json:"main"`
	Message  string   `json:"message"`
	Modality string   `json:"modality"`
	Name     string   `json:"name"`
	Nit      string   `json:"nit"`
	Program  int      `json:"program"`
	TokenJWT string   `json:"tokenjwt"`
}

// PharmacyData datos de la farmacia asociada al contrato
type PharmacyData struct {
	Name         string `json:"name"`
	City         string `json:"city"`
	PharmacyCode string `json:"pharmacyCode"`
}

// ContractData contrato vigente del usuario
type ContractData struct {
	Contract string       `json:"contract"`
	Pharmacy PharmacyData `json:"pharmacy"`
}

// FormulaPatient datos del paciente asociados a una fórmula
type FormulaPatient struct {
	RegisteredTypeNumber string  `json:"registeredTypeNumber"` // radicado tipo-número
	Identification       string  `json:"identification"`
	Name                 string  `json:"name"`
	Phones               *string `json:"phones"` // puede venir "tel1, tel2"
	Email                *string `json:"email"`
	Address              *string `json:"address"`
	NumberFormula        string  `json:"numberFormula"`
}

// EntregaRequest gestión de entrega enviada al backend
type EntregaRequest struct {
	RegisteredTypeNumber string  `json:"registeredTypeNumber"`
	PatientName          string  `json:"patientName"`
	Identification       string  `json:"identification"`
	PrimaryContact       string  `json:"primaryContact"`
	SecondaryContact     *string `json:"secondaryContact,omitempty"`
	Email                *string `json:"email,omitempty"`
	Address              string  `json:"address"`
	ManagementDate       string  `json:"managementDate"` // yyyy-MM-dd
	ManagementTime       string  `json:"managementTime"` // HH:mm:ss
	DeliveryDate         *string `json:"deliveryDate,omitempty"`
	DeliveryTime         *string `json:"deliveryTime,omitempty"`
	PackageType          string  `json:"packageType"`
	CallResult           string  `json:"callResult"`
	Notes                *string `json:"notes,omitempty"`
	PharmacistID         string  `json:"pharmacistId"`
	IsUrgent             bool    `json:"isUrgent"`
}

// SavedEntrega gestión de entrega persistida por el backend
// managementId es la clave de consolidación del historial
type SavedEntrega struct {
	RegisteredTypeNumber string  `json:"registeredTypeNumber"`
	PatientName          string  `json:"patientName"`
	Identification       string  `json:"identification"`
	PrimaryPhone         string  `json:"primaryPhone"`
	SecondaryPhone       *string `json:"secondaryPhone"`
	Email                *string `json:"email"`
	Address              string  `json:"address"`
	ManagementDate       string  `json:"managementDate"`
	ManagementTime       string  `json:"managementTime"`
	DeliveryDate         *string `json:"deliveryDate"`
	DeliveryTime         *string `json:"deliveryTime"`
	PackageType          string  `json:"packageType"`
	CallResult           string  `json:"callResult"`
	Notes                *string `json:"notes"`
	PharmacistID         string  `json:"pharmacistId"`
	IsUrgent             bool    `json:"isUrgent"`
	SentToHome           bool    `json:"sentToHome"`
	ManagementID         int     `json:"managementId"`
}

// PatientPatch actualización parcial de datos del paciente
// Solo viajan los campos no vacíos
type PatientPatch struct {
	NamePatient    string `json:"namePatient,omitempty"`
	Identification string `json:"identification"`
	PrimaryPhone   string `json:"primaryPhone,omitempty"`
	SecondaryPhone string `json:"secondaryPhone,omitempty"`
	Email          string `json:"email,omitempty"`
	Address        string `json:"address,omitempty"`
}
