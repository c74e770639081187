package db

// SchemaSQL creates the tables mirroring the four CSV artifacts. It is
// idempotent.
const SchemaSQL = `
CREATE SCHEMA IF NOT EXISTS neumonia;

CREATE TABLE IF NOT EXISTS neumonia.historico (
    fecha   date    NOT NULL,
    anio    integer NOT NULL,
    semana  integer NOT NULL,
    region  text    NOT NULL,
    casos   integer NOT NULL,
    PRIMARY KEY (fecha, region)
);

CREATE TABLE IF NOT EXISTS neumonia.predicciones (
    fecha   date             NOT NULL,
    region  text             NOT NULL,
    casos   double precision NOT NULL,
    lower   double precision NOT NULL,
    upper   double precision NOT NULL,
    PRIMARY KEY (fecha, region)
);

CREATE TABLE IF NOT EXISTS neumonia.modelos (
    region  text PRIMARY KEY,
    modelo  text NOT NULL
);

CREATE TABLE IF NOT EXISTS neumonia.serie_imputada (
    fecha    date    NOT NULL,
    region   text    NOT NULL,
    casos    integer NOT NULL,
    imputado boolean NOT NULL,
    PRIMARY KEY (fecha, region)
);
`
