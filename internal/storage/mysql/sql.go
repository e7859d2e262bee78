package mysql

const getRoomTypeSQL = `
SELECT id, name, description, capacity
FROM room_types
WHERE id = ?
`

const getHotelSQL = `
SELECT id, name, address, lat, lon, phone, contact_email, category, amenities
FROM hotels
WHERE id = ?
`

// First match wins when windows overlap; ordered by id so the pick is
// deterministic.
const currentRateSQL = `
SELECT id, room_type_id, nightly_price, start_date, end_date
FROM rates
WHERE room_type_id = ?
  AND (start_date IS NULL OR start_date <= ?)
  AND (end_date IS NULL OR end_date >= ?)
ORDER BY id
LIMIT 1
`

const getRoomSQL = `
SELECT id, number, room_type_id, hotel_id
FROM rooms
WHERE id = ?
`

const insertRoomSQL = `
INSERT INTO rooms (number, room_type_id, hotel_id)
VALUES (?, ?, ?)
`

const updateRoomSQL = `
UPDATE rooms
SET number = ?, room_type_id = ?, hotel_id = ?
WHERE id = ?
`

const deleteRoomSQL = `
DELETE FROM rooms
WHERE id = ?
`

const insertRateSQL = `
INSERT INTO rates (room_type_id, nightly_price, start_date, end_date)
VALUES (?, ?, ?, ?)
`
