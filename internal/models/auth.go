package models

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
// Пароль ограничен 72 байтами: bcrypt не принимает более длинные.
type DummyRegister struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Surname  string `json:"surname" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=6,max=30"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
