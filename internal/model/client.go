package model

import "github.com/google/uuid"

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

type Client struct {
	Base
	ClinicID uuid.UUID    `db:"clinic_id" json:"clinicId"`
	Name     string       `db:"name" json:"name"`
	Email    string       `db:"email" json:"email"`
	Phone    string       `db:"phone" json:"phone"`
	Sex      Sex          `db:"sex" json:"sex"`
	Status   ClientStatus `db:"status" json:"status"`
}

type ClientRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,min=8,max=32"`
	Sex   Sex    `json:"sex" binding:"required,oneof=male female"`
}

type ClientStatusRequest struct {
	Status ClientStatus `json:"status" binding:"required,oneof=active inactive"`
}

type ClientFilters struct {
	Page
	Search string       `form:"search" binding:"omitempty,max=255"`
	Phone  string       `form:"phone" binding:"omitempty,max=32"`
	Status ClientStatus `form:"status" binding:"omitempty,oneof=active inactive"`
}
